package notify

import (
	"io"
	"log/slog"
	"testing"
)

func TestFeed(t *testing.T) {
	f := NewFeed(3, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if got := f.Recent(0); len(got) != 0 {
		t.Fatalf("Recent() on empty feed = %v", got)
	}

	for _, msg := range []string{"one", "two", "three", "four"} {
		f.Notify(LevelInfo, msg)
	}
	f.Notify(LevelError, "five")

	got := f.Recent(0)
	want := []string{"five", "four", "three"}
	if len(got) != len(want) {
		t.Fatalf("Recent() = %v, want %d items", got, len(want))
	}
	for i := range want {
		if got[i].Message != want[i] {
			t.Errorf("Recent()[%d] = %q, want %q", i, got[i].Message, want[i])
		}
	}
	if got[0].Level != LevelError {
		t.Errorf("Recent()[0].Level = %q, want %q", got[0].Level, LevelError)
	}

	if got := f.Recent(1); len(got) != 1 || got[0].Message != "five" {
		t.Errorf("Recent(1) = %v", got)
	}
}
