package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// MaxFilenameLength matches the size of the file name columns.
const MaxFilenameLength = 255

// SanitizeFilename turns a client-supplied upload name into a display name:
// directories are dropped, control and reserved characters removed and
// whitespace collapsed. Long names are shortened but keep their extension.
func SanitizeFilename(filename string) string {
	// Browsers on Windows may send the full path
	filename = strings.ReplaceAll(filename, `\`, "/")
	filename = filepath.Base(filename)

	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." || filename == "/" {
		return "upload"
	}

	if len(filename) > MaxFilenameLength {
		ext := filepath.Ext(filename)
		if len(ext) > 16 {
			ext = ""
		}
		filename = strings.TrimSpace(filename[:MaxFilenameLength-len(ext)]) + ext
	}

	return filename
}
