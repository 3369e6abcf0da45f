package titlenorm

import (
	"reflect"
	"testing"
)

func TestStandardize(t *testing.T) {
	cases := map[string]string{
		"  Love   Will Tear Us Apart  ":     "Love Will Tear Us Apart",
		"Closer [Remastered]":               "Closer [Remastered]",
		"Closer[Remastered][Deluxe]":         "Closer [Remastered] [Deluxe]",
		"Closer [  Remastered  ]":            "Closer [Remastered]",
	}
	for in, want := range cases {
		got, ok := Standardize(in)
		if !ok {
			t.Errorf("Standardize(%q) rejected, want %q", in, want)
			continue
		}
		if got != want {
			t.Errorf("Standardize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStandardizeRejectsBrokenTags(t *testing.T) {
	if _, ok := Standardize("broken ] [tag"); ok {
		t.Error("expected rejection of a title with an unmatched bracket")
	}
}

func TestAppendNoTags(t *testing.T) {
	if got := Append("TIT2", " (w/ T-Pain)"); got != "TIT2 (w/ T-Pain)" {
		t.Errorf("Append = %q", got)
	}
}

func TestAppendWithTags(t *testing.T) {
	got := Append("TIT2 [Tag]", " (w/ T-Pain)")
	want := "TIT2 (w/ T-Pain) [Tag]"
	if got != want {
		t.Errorf("Append = %q, want %q", got, want)
	}
}

func TestSplitTags(t *testing.T) {
	text, tags := SplitTags("Closer [Remastered] [Deluxe]")
	if text != "Closer" {
		t.Errorf("text = %q, want Closer", text)
	}
	want := []string{"Remastered", "Deluxe"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
}

func TestSplitTagsNone(t *testing.T) {
	text, tags := SplitTags("No Tags Here")
	if text != "No Tags Here" || tags != nil {
		t.Errorf("got (%q, %v), want (%q, nil)", text, tags, "No Tags Here")
	}
}
