package nml

import "encoding/xml"

// Document mirrors the subset of Traktor's NML (version 14) schema this
// package reads and writes: a COLLECTION of ENTRY elements and a
// PLAYLISTS tree holding a hidden "_CHIRP" playlist whose UUID attribute
// is repurposed to carry the last-export timestamp. Grounded on
// chirp/library/nml_writer.py's _NML_PREFIX/_NML_ENTRY/_NML_SUFFIX
// templates and NMLReadWriter's element-tree walk.
type Document struct {
	XMLName      xml.Name   `xml:"NML"`
	Version      string     `xml:"VERSION,attr"`
	Head         Head       `xml:"HEAD"`
	MusicFolders struct{}   `xml:"MUSICFOLDERS"`
	Collection   Collection `xml:"COLLECTION"`
	Playlists    Playlists  `xml:"PLAYLISTS"`
}

type Head struct {
	Company string `xml:"COMPANY,attr"`
	Program string `xml:"PROGRAM,attr"`
}

type Collection struct {
	Entries int     `xml:"ENTRIES,attr"`
	Entry   []Entry `xml:"ENTRY"`
}

// Entry is one track's record. Fields split across Location/Album/Info
// mirror the original's nested elements.
type Entry struct {
	XMLName      xml.Name `xml:"ENTRY"`
	ModifiedDate string   `xml:"MODIFIED_DATE,attr"`
	ModifiedTime string   `xml:"MODIFIED_TIME,attr"`
	Title        string   `xml:"TITLE,attr"`
	Artist       string   `xml:"ARTIST,attr"`
	Location     Location `xml:"LOCATION"`
	Album        AlbumRef `xml:"ALBUM"`
	Info         Info     `xml:"INFO"`
}

type Location struct {
	Dir      string `xml:"DIR,attr"`
	File     string `xml:"FILE,attr"`
	Volume   string `xml:"VOLUME,attr"`
	VolumeID string `xml:"VOLUME_ID,attr"`
}

type AlbumRef struct {
	OfTracks int    `xml:"OF_TRACKS,attr"`
	Title    string `xml:"TITLE,attr"`
	Track    int    `xml:"TRACK,attr"`
}

type Info struct {
	Bitrate    int    `xml:"BITRATE,attr"`
	Genre      string `xml:"GENRE,attr"`
	Playtime   int    `xml:"PLAYTIME,attr"`
	ImportDate string `xml:"IMPORT_DATE,attr"`
	FileSize   int    `xml:"FILESIZE,attr"`
}

type Playlists struct {
	Root Node `xml:"NODE"`
}

// Node is a Traktor playlist-tree node: either a FOLDER (with
// SUBNODES) or a PLAYLIST leaf.
type Node struct {
	Type     string      `xml:"TYPE,attr"`
	Name     string      `xml:"NAME,attr"`
	Subnodes *Subnodes   `xml:"SUBNODES,omitempty"`
	Playlist *PlaylistEl `xml:"PLAYLIST,omitempty"`
}

type Subnodes struct {
	Count int    `xml:"COUNT,attr"`
	Nodes []Node `xml:"NODE"`
}

type PlaylistEl struct {
	Entries int    `xml:"ENTRIES,attr"`
	Type    string `xml:"TYPE,attr"`
	UUID    string `xml:"UUID,attr,omitempty"`
}

const (
	recordingsPlaylistName = "_RECORDINGS"
	chirpPlaylistName      = "_CHIRP"
)

// chirpUUID searches the playlist tree for the hidden "_CHIRP" node and
// returns its UUID attribute (the last-export timestamp as decimal
// text), unparsed.
func (d *Document) chirpUUID() (string, bool) {
	return findChirpUUID(&d.Playlists.Root)
}

func findChirpUUID(n *Node) (string, bool) {
	if n.Name == chirpPlaylistName && n.Playlist != nil {
		return n.Playlist.UUID, n.Playlist.UUID != ""
	}
	if n.Subnodes != nil {
		for i := range n.Subnodes.Nodes {
			if uuid, ok := findChirpUUID(&n.Subnodes.Nodes[i]); ok {
				return uuid, true
			}
		}
	}
	return "", false
}

// setChirpUUID overwrites the hidden "_CHIRP" node's UUID in place,
// creating the node (and its parent folder, if entirely missing) when
// the document has none yet.
func (d *Document) setChirpUUID(uuid string) {
	if setChirpUUID(&d.Playlists.Root, uuid) {
		return
	}
	if d.Playlists.Root.Subnodes == nil {
		d.Playlists.Root.Subnodes = &Subnodes{}
	}
	d.Playlists.Root.Subnodes.Nodes = append(d.Playlists.Root.Subnodes.Nodes, Node{
		Type:     "PLAYLIST",
		Name:     chirpPlaylistName,
		Playlist: &PlaylistEl{Type: "LIST", UUID: uuid},
	})
	d.Playlists.Root.Subnodes.Count = len(d.Playlists.Root.Subnodes.Nodes)
}

func setChirpUUID(n *Node, uuid string) bool {
	if n.Name == chirpPlaylistName && n.Playlist != nil {
		n.Playlist.UUID = uuid
		return true
	}
	if n.Subnodes != nil {
		for i := range n.Subnodes.Nodes {
			if setChirpUUID(&n.Subnodes.Nodes[i], uuid) {
				return true
			}
		}
	}
	return false
}

// newPlaylistsTree builds the boilerplate $ROOT folder containing the
// always-present "_RECORDINGS" playlist and the "_CHIRP" timestamp
// playlist, per _NML_SUFFIX/_NML_TIMESTAMP.
func newPlaylistsTree(chirpUUID string) Playlists {
	return Playlists{
		Root: Node{
			Type: "FOLDER",
			Name: "$ROOT",
			Subnodes: &Subnodes{
				Count: 2,
				Nodes: []Node{
					{
						Type:     "PLAYLIST",
						Name:     recordingsPlaylistName,
						Playlist: &PlaylistEl{Type: "LIST"},
					},
					{
						Type:     "PLAYLIST",
						Name:     chirpPlaylistName,
						Playlist: &PlaylistEl{Type: "LIST", UUID: chirpUUID},
					},
				},
			},
		},
	}
}
