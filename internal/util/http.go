package util

import (
	"fmt"
	"strings"
	"unicode"
)

// AttachmentFilename turns a deck name into a safe download file name with
// the given extension. Empty names become "deck".
func AttachmentFilename(name, ext string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimRight(b.String(), "-")
	if base == "" {
		base = "deck"
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

// ContentDisposition returns an attachment header value for filename.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
