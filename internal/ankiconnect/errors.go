package ankiconnect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelNotFound is returned when no note model has the requested name
var ErrModelNotFound = errors.New("note model not found")

// BridgeError carries an error reported by AnkiConnect for an action
type BridgeError struct {
	Action  string
	Message string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("ankiconnect %s: %s", e.Action, e.Message)
}

// ModelConflictError is returned by CreateModel when the model name is taken
type ModelConflictError struct {
	Name string
	Err  *BridgeError
}

func (e *ModelConflictError) Error() string {
	return fmt.Sprintf("note model %q already exists", e.Name)
}

func (e *ModelConflictError) Unwrap() error {
	return e.Err
}

// ProtocolError means the bridge answered with something that is not an
// AnkiConnect response
type ProtocolError struct {
	Action string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ankiconnect %s: protocol error: %s", e.Action, e.Reason)
}

func newBridgeError(action, message string) *BridgeError {
	return &BridgeError{Action: action, Message: message}
}

// isNameTaken matches the message Anki raises for a duplicate model name
func isNameTaken(message string) bool {
	return strings.Contains(strings.ToLower(message), "already exists")
}
