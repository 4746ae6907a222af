package game

import (
	"errors"
	"fmt"
)

// Kind classifies expected, business-rule failures.
type Kind int

const (
	KindNotFound      Kind = iota + 1 // referenced game does not exist
	KindInvalidLetter                 // token is not a single a–z character
	KindInvalidLength                 // word length does not match the game
	KindGameFinished                  // attempt against a finished game
)

// String returns the wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidLetter:
		return "INVALID_LETTER"
	case KindInvalidLength:
		return "INVALID_LENGTH"
	case KindGameFinished:
		return "GAME_FINISHED"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a domain error. Compare with errors.Is against the Err* values;
// two Errors match when their kinds match, whatever the message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

// Is matches on Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound, Msg: "game not found"}
	ErrInvalidLetter = &Error{Kind: KindInvalidLetter, Msg: "invalid letter"}
	ErrInvalidLength = &Error{Kind: KindInvalidLength, Msg: "invalid word length"}
	ErrGameFinished  = &Error{Kind: KindGameFinished, Msg: "game finished"}
)

// Errorf builds a domain error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the domain kind from err (through any wrapping).
// ok is false for errors that are not domain errors.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
