package card

import "fmt"

// InvalidAnalysisError means the analyzer returned nothing usable for a word
type InvalidAnalysisError struct {
	Word string
	Err  error
}

func (e *InvalidAnalysisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid analysis for %q: no word senses returned", e.Word)
	}
	return fmt.Sprintf("invalid analysis for %q: %v", e.Word, e.Err)
}

func (e *InvalidAnalysisError) Unwrap() error {
	return e.Err
}

// CardWriteError means the bridge rejected the final add or update
type CardWriteError struct {
	Op   string // "add" or "update"
	Word string
	Err  error
}

func (e *CardWriteError) Error() string {
	return fmt.Sprintf("failed to %s card for %q: %v", e.Op, e.Word, e.Err)
}

func (e *CardWriteError) Unwrap() error {
	return e.Err
}
