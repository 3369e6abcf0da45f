package tags

import "testing"

func TestSetPutReplacesInPlace(t *testing.T) {
	s := NewSet()
	s.Put(Frame{ID: "TIT2", Kind: KindText, Value: "first"})
	s.Put(Frame{ID: "TPE1", Kind: KindText, Value: "artist"})
	s.Put(Frame{ID: "TIT2", Kind: KindText, Value: "second"})

	if got := s.Text("TIT2"); got != "second" {
		t.Errorf("Text(TIT2) = %q, want %q", got, "second")
	}
	frames := s.Frames()
	if len(frames) != 2 || frames[0].ID != "TIT2" || frames[1].ID != "TPE1" {
		t.Errorf("unexpected frame order: %+v", frames)
	}
}

func TestSetTXXXKeyedByDescription(t *testing.T) {
	s := NewSet()
	s.Put(Frame{ID: "TXXX", Kind: KindTXXX, Description: TXXXAlbumIDDescription, Value: "abc"})
	s.Put(Frame{ID: "TXXX", Kind: KindTXXX, Description: TXXXFrameCountDescription, Value: "5"})

	if got := s.TXXX(TXXXAlbumIDDescription); got != "abc" {
		t.Errorf("TXXX(album id) = %q, want abc", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestSetUFID(t *testing.T) {
	s := NewSet()
	s.Put(Frame{ID: "UFID", Kind: KindUFID, Owner: UFIDOwnerIdentifier, Value: "vol01/20090101-000000/abc"})
	owner, value, ok := s.UFID()
	if !ok || owner != UFIDOwnerIdentifier || value != "vol01/20090101-000000/abc" {
		t.Errorf("UFID() = (%q, %q, %v)", owner, value, ok)
	}
}

func TestCoerceBPM(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantOK  bool
	}{
		{"120 BPM", "120", true},
		{"120.6", "121", true},
		{"0", "", false},
		{"-5 BPM", "", false},
		{"not a number", "", false},
	}
	for _, c := range cases {
		got, ok := CoerceBPM(c.in)
		if ok != c.wantOK || (ok && got != c.want) {
			t.Errorf("CoerceBPM(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.wantOK)
		}
	}
}

func TestStandardizeValue(t *testing.T) {
	cases := map[string]string{
		"  hello   world  ": "hello world",
		"\tfoo\nbar\t":       "foo bar",
		"":                   "",
		"already fine":       "already fine",
	}
	for in, want := range cases {
		if got := standardizeValue(in); got != want {
			t.Errorf("standardizeValue(%q) = %q, want %q", in, got, want)
		}
	}
}
