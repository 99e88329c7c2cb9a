package card

import (
	"fmt"
	"strings"
)

// DedupQuery builds the bridge search for notes of word in deck. Double
// quotes in the word are backslash-escaped once.
func DedupQuery(deck, word string) string {
	escaped := strings.ReplaceAll(word, `"`, `\"`)
	return fmt.Sprintf(`deck:"%s" "%s:%s"`, deck, FieldWord, escaped)
}
