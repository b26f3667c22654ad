package chathub

import (
	"errors"
	"fmt"
)

// ErrorKind classifies command-level failures.
type ErrorKind string

const (
	// KindValidation covers missing or invalid command fields.
	KindValidation ErrorKind = "validation"
	// KindProtocol covers malformed frames and unknown command types.
	KindProtocol ErrorKind = "protocol"
	// KindState covers commands that are invalid in the session's current state.
	KindState ErrorKind = "state"
)

// ErrHubStopped is returned by hub operations after Run has returned.
var ErrHubStopped = errors.New("chathub: hub stopped")

// CommandError is a failure reported privately to the session that caused it.
// Key names a localization string; Args fill its verbs.
type CommandError struct {
	Kind ErrorKind
	Key  string
	Args []any
}

func (e *CommandError) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("%s error: %s", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s error: %s %v", e.Kind, e.Key, e.Args)
}

func validationError(key string, args ...any) error {
	return &CommandError{Kind: KindValidation, Key: key, Args: args}
}

func protocolError(key string, args ...any) error {
	return &CommandError{Kind: KindProtocol, Key: key, Args: args}
}

func stateError(key string, args ...any) error {
	return &CommandError{Kind: KindState, Key: key, Args: args}
}

// KindOf returns the kind of a CommandError, or "" for any other error.
func KindOf(err error) ErrorKind {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
