// Package tag writes a recovered song_id into a decrypted FLAC file's
// VORBIS_COMMENT block, grounded on the go-flac/flacvorbis usage pattern
// in other_examples/647778aa_weaming-raw-kit__ncmcrypt-ncmcrypt.go.go.
package tag

import (
	"fmt"

	flac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacvorbis"
)

// SongIDField is the VORBIS_COMMENT field name this decryptor uses to
// record the song_id recovered from a v2 QTag trailer.
const SongIDField = "QMC_SONG_ID"

// WriteSongID opens the FLAC file at path, adds or replaces a
// VORBIS_COMMENT block carrying songID under SongIDField, and saves the
// file in place. It is a no-op if songID is empty.
func WriteSongID(path string, songID string) error {
	if songID == "" {
		return nil
	}

	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("tag: parse flac: %w", err)
	}

	var comments *flacvorbis.MetaDataBlockVorbisComment
	var commentIdx = -1
	for idx, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			comments, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("tag: parse vorbis comment: %w", err)
			}
			commentIdx = idx
			break
		}
	}
	if comments == nil {
		comments = flacvorbis.New()
	}

	if err := comments.Add(SongIDField, songID); err != nil {
		return fmt.Errorf("tag: add %s: %w", SongIDField, err)
	}

	block := comments.Marshal()
	if commentIdx >= 0 {
		f.Meta[commentIdx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("tag: save flac: %w", err)
	}
	return nil
}
