package internal

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Version is the ankismart release version
const Version = "0.3.0"

// MediaFilename creates a unique media file name for a word
// Format: sanitized-word_kind_uuid[:8].ext
func MediaFilename(word, kind, ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s_%s_%s.%s", SanitizeFilename(word), kind, id, ext)
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	result := b.String()
	if len([]rune(result)) > 50 {
		result = string([]rune(result)[:50])
	}
	if result == "" {
		return "word"
	}
	return result
}

// isAlphaNumeric checks if a rune is a letter or a digit in any script
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
