package domain

import "testing"

func TestWatchedStatusCycle(t *testing.T) {
	if Unwatched.Next() != Watching {
		t.Fatal("Unwatched should advance to Watching")
	}
	if Watching.Next() != Watched {
		t.Fatal("Watching should advance to Watched")
	}
	if Watched.Next() != Unwatched {
		t.Fatal("Watched should wrap to Unwatched")
	}
}

func TestParseWatchedStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    WatchedStatus
		wantErr bool
	}{
		{"Unwatched", Unwatched, false},
		{"Watching", Watching, false},
		{"Watched", Watched, false},
		{"watched", 0, true},
		{"", 0, true},
		{"Maybe", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseWatchedStatus(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseWatchedStatus(%q) = %v, want error", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseWatchedStatus(%q) = %v, %v, want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestParseRoundTripsString(t *testing.T) {
	for _, status := range []WatchedStatus{Unwatched, Watching, Watched} {
		parsed, err := ParseWatchedStatus(status.String())
		if err != nil || parsed != status {
			t.Fatalf("round trip of %v = %v, %v", status, parsed, err)
		}
	}
}
