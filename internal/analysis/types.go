package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CEFRLevels are the accepted frequency tags
var CEFRLevels = []any{"A1", "A2", "B1", "B2", "C1", "C2"}

var requiredKeys = []string{
	"word", "syllables", "us_pron", "uk_pron", "word_form", "frequency",
	"definitions", "synonyms", "notes", "examples",
}

// Definition is one sense of a word with its translation
type Definition struct {
	ImageFriendly bool
	English       string
	Translation   string
}

// ExamplePair is an example sentence and its translation
type ExamplePair struct {
	English     string
	Translation string
}

// ExampleGroup holds the examples for one phrase
type ExampleGroup struct {
	Phrase string
	Pairs  []ExamplePair
}

// WordSense is one part-of-speech reading of a word
type WordSense struct {
	Word          string
	Syllables     string
	USPron        string
	UKPron        string
	WordForm      string
	Frequency     string
	Definitions   []Definition
	Synonyms      []string
	Notes         []string
	Examples      []ExampleGroup
	ImageKeywords []string
}

type wordSenseJSON struct {
	Word          string            `json:"word"`
	Syllables     string            `json:"syllables"`
	USPron        string            `json:"us_pron"`
	UKPron        string            `json:"uk_pron"`
	WordForm      string            `json:"word_form"`
	Frequency     string            `json:"frequency"`
	Definitions   []json.RawMessage `json:"definitions"`
	Synonyms      []string          `json:"synonyms"`
	Notes         []string          `json:"notes"`
	Examples      json.RawMessage   `json:"examples"`
	ImageKeywords []string          `json:"image_keywords"`
}

// UnmarshalJSON decodes one record, rejecting missing keys and malformed
// definition or example entries
func (w *WordSense) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			return fmt.Errorf("missing key %q", k)
		}
	}

	var raw wordSenseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	defs := make([]Definition, 0, len(raw.Definitions))
	for i, d := range raw.Definitions {
		def, err := decodeDefinition(d)
		if err != nil {
			return fmt.Errorf("definitions[%d]: %w", i, err)
		}
		defs = append(defs, def)
	}

	examples, err := decodeExamples(raw.Examples)
	if err != nil {
		return fmt.Errorf("examples: %w", err)
	}

	*w = WordSense{
		Word:          raw.Word,
		Syllables:     raw.Syllables,
		USPron:        raw.USPron,
		UKPron:        raw.UKPron,
		WordForm:      raw.WordForm,
		Frequency:     raw.Frequency,
		Definitions:   defs,
		Synonyms:      raw.Synonyms,
		Notes:         raw.Notes,
		Examples:      examples,
		ImageKeywords: raw.ImageKeywords,
	}
	return nil
}

// Validate checks the decoded record
func (w WordSense) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Word, validation.Required),
		validation.Field(&w.WordForm, validation.Required),
		validation.Field(&w.Frequency, validation.Required, validation.In(CEFRLevels...)),
		validation.Field(&w.Definitions, validation.Required),
	)
}

// decodeDefinition reads [image_friendly, english, translation]
func decodeDefinition(data json.RawMessage) (Definition, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return Definition{}, err
	}
	if len(parts) != 3 {
		return Definition{}, fmt.Errorf("want 3 elements, got %d", len(parts))
	}

	var def Definition
	switch string(bytes.TrimSpace(parts[0])) {
	case "true":
		def.ImageFriendly = true
	case "false":
	default:
		return Definition{}, errors.New("first element must be a boolean")
	}
	if err := json.Unmarshal(parts[1], &def.English); err != nil {
		return Definition{}, fmt.Errorf("english definition: %w", err)
	}
	if err := json.Unmarshal(parts[2], &def.Translation); err != nil {
		return Definition{}, fmt.Errorf("translated definition: %w", err)
	}
	return def, nil
}

// decodeExamples reads {"phrase": [[en, tr], ...], ...} keeping the key order
func decodeExamples(data json.RawMessage) ([]ExampleGroup, error) {
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("must be an object")
	}

	var groups []ExampleGroup
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		phrase, _ := keyTok.(string)

		var pairs [][]string
		if err := dec.Decode(&pairs); err != nil {
			return nil, fmt.Errorf("%q: %w", phrase, err)
		}

		group := ExampleGroup{Phrase: phrase}
		for i, p := range pairs {
			if len(p) != 2 {
				return nil, fmt.Errorf("%q[%d]: want 2 elements, got %d", phrase, i, len(p))
			}
			group.Pairs = append(group.Pairs, ExamplePair{English: p[0], Translation: p[1]})
		}
		groups = append(groups, group)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return groups, nil
}
