package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"go.qmcdec.dev/cli/internal/decoder"
	"go.qmcdec.dev/cli/internal/sniff"
	"go.qmcdec.dev/cli/internal/tag"
)

// processor holds the options shared across every file processed in a run,
// mirroring cmd/um/main.go's processor struct trimmed to this
// decryptor's scope (no mmkv/kgg-db/metadata-fetch state).
type processor struct {
	logger    *zap.Logger
	ekey      string
	overwrite bool
}

// processFile decrypts a single input file into output, which is either a
// literal output file path or an existing directory (in which case the
// output filename is <input stem>.<decrypted extension>).
func (p *processor) processFile(input, output string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input), "."))
	format, ok := decoder.FormatFromExtension(ext)
	if !ok {
		return fmt.Errorf("processor: %s: unrecognized extension %q", input, ext)
	}

	outPath := output
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		outPath = filepath.Join(output, stem+"."+format.DecryptedExtension())
	}

	if !p.overwrite {
		if _, err := os.Stat(outPath); err == nil {
			p.logger.Info("skipping existing output", zap.String("path", outPath))
			return nil
		}
	}

	if !sniff.IsKnownExtension(filepath.Ext(outPath)) {
		return fmt.Errorf("processor: %s: decrypted extension %q is not a container this build can tag or verify", input, filepath.Ext(outPath))
	}

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("processor: open input: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("processor: mkdir output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("processor: create output: %w", err)
	}

	var songID string
	if format.Legacy() {
		songID, err = p.decryptLegacy(in, out, format)
	} else {
		songID, err = p.decryptV2(in, out, format)
	}
	if err != nil {
		out.Close()
		if errors.Is(err, decoder.ErrEKeyRequired) {
			return fmt.Errorf("processor: %s: an ekey is required for %s inputs", input, format)
		}
		return fmt.Errorf("processor: %s: %w", input, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("processor: close output: %w", err)
	}

	if songID != "" && format.DecryptedExtension() == "flac" {
		if err := tag.WriteSongID(outPath, songID); err != nil {
			return fmt.Errorf("processor: tag %s: %w", outPath, err)
		}
	}

	p.logger.Info("decrypted", zap.String("input", input), zap.String("output", outPath))
	return nil
}

// decryptLegacy streams input through the generator-form cipher. qmcflac/
// qmc0 carry no trailer, EKey, or song tag, so there is nothing to validate
// up front and no need for the table form's random access.
func (p *processor) decryptLegacy(in io.Reader, out io.Writer, format decoder.Format) (songID string, err error) {
	decrypted, err := decoder.DecryptAll(in, format)
	if err != nil {
		return "", err
	}
	if _, ok := sniff.AudioExtension(decrypted); !ok {
		return "", fmt.Errorf("decrypted header did not match a known %s container", format.DecryptedExtension())
	}
	_, err = out.Write(decrypted)
	return "", err
}

// decryptV2 runs mflac0/mgg1 input through the seekable Decoder, which
// builds its cipher from the supplied EKey and uses trailer detection to
// find the end of the ciphertext and the song tag.
func (p *processor) decryptV2(in io.ReadSeeker, out io.Writer, format decoder.Format) (songID string, err error) {
	dec := decoder.NewDecoder(&decoder.Params{
		Reader: in,
		Format: format,
		EKey:   p.ekey,
		Logger: p.logger,
	})
	if err := dec.Validate(); err != nil {
		return "", err
	}
	if _, err := io.Copy(out, dec); err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return dec.SongID(), nil
}

// processDir walks inputDir recursively, processing every file with a
// recognized extension into outputDir. Unrecognized extensions are skipped
// silently; individual file failures are logged and skipped rather than aborting the
// whole batch, matching cmd/um/main.go's processDir tolerance for mixed
// directories.
func (p *processor) processDir(inputDir, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("processor: mkdir output dir: %w", err)
	}

	return filepath.WalkDir(inputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := decoder.FormatFromExtension(ext); !ok {
			return nil
		}
		if err := p.processFile(path, outputDir); err != nil {
			p.logger.Error("failed to process file", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}
