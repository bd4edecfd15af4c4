package tag

import "testing"

func TestWriteSongIDNoopOnEmpty(t *testing.T) {
	// An empty song_id (the common case for files with no recovered v2
	// trailer, or for legacy qmcflac/qmc0 inputs) must never touch the
	// file on disk. A nonexistent path proves WriteSongID returns before
	// attempting to open it.
	if err := WriteSongID("/nonexistent/path/does/not/matter.flac", ""); err != nil {
		t.Fatalf("WriteSongID with empty songID: %v", err)
	}
}
