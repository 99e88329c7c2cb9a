package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Parse decodes the backend text into word senses. The text must be a bare
// JSON array; anything else is a *MalformedResponseError.
func Parse(word, text string) ([]WordSense, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	data := []byte(text)
	if data[0] != '[' {
		return nil, &MalformedResponseError{Word: word, Err: errors.New("top level is not a JSON array")}
	}

	var senses []WordSense
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&senses); err != nil {
		return nil, &MalformedResponseError{Word: word, Err: err}
	}
	if dec.More() {
		return nil, &MalformedResponseError{Word: word, Err: errors.New("trailing data after JSON array")}
	}

	for i, s := range senses {
		if err := s.Validate(); err != nil {
			return nil, &MalformedResponseError{Word: word, Err: fmt.Errorf("record %d: %w", i, err)}
		}
	}
	return senses, nil
}
