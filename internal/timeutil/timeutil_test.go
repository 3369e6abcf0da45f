package timeutil

import "testing"

func TestHumanReadableRoundTrip(t *testing.T) {
	ts := int64(1230879845) // 2009-01-02 03:04:05 local
	human := HumanReadable(ts)
	got, err := ParseHumanReadable(human)
	if err != nil {
		t.Fatalf("ParseHumanReadable(%q): %v", human, err)
	}
	if got != ts {
		t.Errorf("round trip = %d, want %d", got, ts)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		ts   int64
		want bool
	}{
		{0, false},
		{minReasonable, false},
		{minReasonable + 1, true},
		{maxReasonable - 1, true},
		{maxReasonable, false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.ts); got != tt.want {
			t.Errorf("IsValid(%d) = %v, want %v", tt.ts, got, tt.want)
		}
	}
}
