package audio

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateWord checks that text is non-empty and contains at least one letter
func ValidateWord(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			return nil
		}
	}

	return fmt.Errorf("text must contain at least one letter")
}
