package analysis

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the backend answered without text
var ErrEmptyResponse = errors.New("empty response from AI backend")

// MalformedResponseError means the backend text is not a valid list of
// word senses
type MalformedResponseError struct {
	Word string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed analysis for %q: %v", e.Word, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ImageGenerationError is returned when the image model produced no image
type ImageGenerationError struct {
	Word         string
	FinishReason string
	BlockReason  string
}

func (e *ImageGenerationError) Error() string {
	msg := fmt.Sprintf("no image generated for %q (finish reason: %s)", e.Word, e.FinishReason)
	if e.BlockReason != "" {
		msg += fmt.Sprintf(", prompt blocked: %s", e.BlockReason)
	}
	return msg
}
