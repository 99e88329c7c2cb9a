package card

import (
	"fmt"
	"regexp"
	"strings"

	"codeberg.org/snonux/ankismart/internal/analysis"
)

var boldMarker = regexp.MustCompile(`\*\*(.+?)\*\*`)

// BuildFields renders a word sense into the note's field map. Audio and
// image fields start blank and User Notes is empty.
func BuildFields(sense analysis.WordSense) map[string]string {
	return map[string]string{
		FieldWord:        sense.Word,
		FieldSyllables:   sense.Syllables,
		FieldUSPron:      sense.USPron,
		FieldUKPron:      sense.UKPron,
		FieldUSAudio:     "",
		FieldUKAudio:     "",
		FieldWordForm:    sense.WordForm,
		FieldFrequency:   sense.Frequency,
		FieldDefinitions: FormatDefinitions(sense.Definitions),
		FieldSynonyms:    FormatSynonyms(sense.Synonyms),
		FieldExamples:    FormatExamples(sense.Examples),
		FieldImages:      "",
		FieldNotes:       FormatNotes(sense.Notes),
		FieldUserNotes:   "",
	}
}

// FormatDefinitions numbers the definitions, each followed by its indented translation
func FormatDefinitions(defs []analysis.Definition) string {
	lines := make([]string, 0, len(defs))
	for i, d := range defs {
		lines = append(lines, fmt.Sprintf("%d. %s<br>&nbsp;&nbsp;%s", i+1, d.English, d.Translation))
	}
	return strings.Join(lines, "<br>")
}

// FormatExamples renders one bulleted block per phrase, separated by <hr>
func FormatExamples(groups []analysis.ExampleGroup) string {
	blocks := make([]string, 0, len(groups))
	for _, g := range groups {
		var lines []string
		for _, p := range g.Pairs {
			lines = append(lines, "• "+Emphasize(p.English, g.Phrase), "&nbsp;&nbsp;"+p.Translation)
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "<br>"))
		}
	}
	return strings.Join(blocks, "<hr>")
}

// Emphasize bolds the phrase in sentence. **x** markers win; without them
// every case-insensitive occurrence of phrase is wrapped.
func Emphasize(sentence, phrase string) string {
	if boldMarker.MatchString(sentence) {
		return boldMarker.ReplaceAllString(sentence, "<b>$1</b>")
	}
	if strings.Contains(sentence, "<b>") {
		return sentence
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return sentence
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
	return re.ReplaceAllString(sentence, "<b>$0</b>")
}

// FormatSynonyms joins synonyms with commas
func FormatSynonyms(synonyms []string) string {
	return strings.Join(synonyms, ", ")
}

// FormatNotes bullets each note on its own line
func FormatNotes(notes []string) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, "• "+n)
	}
	return strings.Join(lines, "<br>")
}

// FormatImages joins image tags with a space
func FormatImages(tags []string) string {
	return strings.Join(tags, " ")
}

func soundTag(filename string) string {
	return "[sound:" + filename + "]"
}

func imageTag(filename string) string {
	return `<img src="` + filename + `">`
}
