// Package sniff identifies the container format of decrypted audio bytes
// by magic-byte inspection, adapted from an earlier internal/sniff,
// trimmed to the three containers this decryptor ever produces: MP3,
// FLAC, and Ogg.
package sniff

import (
	"bytes"

	"golang.org/x/exp/slices"
)

// Sniffer reports whether header (the start of a decrypted file) matches
// its format.
type Sniffer interface {
	Sniff(header []byte) bool
}

var audioExtensions = map[string]Sniffer{
	".ogg":  prefixSniffer("OggS"), // ref: https://xiph.org/ogg
	".flac": prefixSniffer("fLaC"), // ref: https://xiph.org/flac/format.html
	".mp3":  &mp3Sniffer{},         // ID3v2 tag or bare frame sync
}

// AudioExtension sniffs the known audio types and returns the file
// extension. header should be at least 16 bytes when available; shorter
// headers degrade MP3 frame-sync detection but still catch Ogg/FLAC.
func AudioExtension(header []byte) (string, bool) {
	if bytes.HasPrefix(header, []byte("OggS")) {
		return ".ogg", true
	}
	if bytes.HasPrefix(header, []byte("fLaC")) {
		return ".flac", true
	}
	if (&mp3Sniffer{}).Sniff(header) {
		return ".mp3", true
	}
	return "", false
}

// AudioExtensionWithFallback returns fallback when sniffing fails. mp3 is
// the conventional fallback because MP3 files need not carry an ID3v2 tag.
func AudioExtensionWithFallback(header []byte, fallback string) string {
	if ext, ok := AudioExtension(header); ok {
		return ext
	}
	return fallback
}

type prefixSniffer []byte

func (s prefixSniffer) Sniff(header []byte) bool {
	return bytes.HasPrefix(header, s)
}

// mp3Sniffer detects MP3 files with or without an ID3v2 tag.
type mp3Sniffer struct{}

func (m *mp3Sniffer) Sniff(header []byte) bool {
	if len(header) < 4 {
		return false
	}
	if bytes.HasPrefix(header, []byte("ID3")) {
		return true
	}
	return m.isMP3FrameHeader(header)
}

func (m *mp3Sniffer) isMP3FrameHeader(header []byte) bool {
	for i := 0; i <= len(header)-4; i++ {
		if m.isValidMP3Frame(header[i:]) {
			return true
		}
	}
	return false
}

func (m *mp3Sniffer) isValidMP3Frame(frame []byte) bool {
	if len(frame) < 4 {
		return false
	}
	if frame[0] != 0xFF || (frame[1]&0xE0) != 0xE0 {
		return false
	}
	version := (frame[1] >> 3) & 0x03
	if version == 1 {
		return false
	}
	layer := (frame[1] >> 1) & 0x03
	if layer == 0 {
		return false
	}
	bitrate := (frame[2] >> 4) & 0x0F
	if bitrate == 0 || bitrate == 15 {
		return false
	}
	samplingFreq := (frame[2] >> 2) & 0x03
	if samplingFreq == 3 {
		return false
	}
	return true
}

// KnownExtensions lists the containers sniff can ever identify.
func KnownExtensions() []string {
	exts := make([]string, 0, len(audioExtensions))
	for ext := range audioExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// IsKnownExtension reports whether ext (with leading dot) is one sniff
// can return.
func IsKnownExtension(ext string) bool {
	return slices.Contains(KnownExtensions(), ext)
}
