package decoder

import (
	"fmt"

	"github.com/samber/lo"
)

// Format identifies one of the four QMC/QMC2 container flavors this
// decoder handles, grounded on original_source/src/lib.rs's extension
// table. Other flavors some unlockers also recognize (kgm, ncm, tm, ...) belong
// to unrelated DRM ecosystems and are out of scope.
type Format int

const (
	FormatUnknown Format = iota
	FormatQMCFlac        // legacy cipher, no trailer
	FormatQMC0           // legacy cipher, no trailer
	FormatMFlac0         // v2 detector path
	FormatMGG1           // v2 detector path
)

// FormatFromExtension maps a lowercase input file extension (without the
// leading dot) to its Format, or reports ok=false for anything else.
func FormatFromExtension(ext string) (Format, bool) {
	switch ext {
	case "qmcflac":
		return FormatQMCFlac, true
	case "qmc0":
		return FormatQMC0, true
	case "mflac0":
		return FormatMFlac0, true
	case "mgg1":
		return FormatMGG1, true
	default:
		return FormatUnknown, false
	}
}

// Legacy reports whether f uses the keyless legacy cipher (no trailer, no
// EKey) rather than the v2 detector/EKey path.
func (f Format) Legacy() bool {
	return f == FormatQMCFlac || f == FormatQMC0
}

// DecryptedExtension is the output file extension once f's cipher layer
// is stripped.
func (f Format) DecryptedExtension() string {
	switch f {
	case FormatQMCFlac, FormatMFlac0:
		return "flac"
	case FormatQMC0:
		return "mp3"
	case FormatMGG1:
		return "ogg"
	default:
		return ""
	}
}

// allFormats enumerates every Format this decoder recognizes.
var allFormats = []Format{FormatQMCFlac, FormatQMC0, FormatMFlac0, FormatMGG1}

// SupportedExtensions lists every recognized input extension, for the
// CLI's --list-extensions flag.
func SupportedExtensions() []string {
	return lo.Map(allFormats, func(f Format, _ int) string { return f.String() })
}

func (f Format) String() string {
	switch f {
	case FormatQMCFlac:
		return "qmcflac"
	case FormatQMC0:
		return "qmc0"
	case FormatMFlac0:
		return "mflac0"
	case FormatMGG1:
		return "mgg1"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}
