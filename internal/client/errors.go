package client

import (
	"errors"
	"fmt"
)

// Kind classifies a lookup failure. Callers map it to a response status.
type Kind int

const (
	KindUnexpected Kind = iota
	KindInvalidInput
	KindNotFound
	KindTimeout
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	case KindUpstreamFailure:
		return "upstream_failure"
	default:
		return "unexpected"
	}
}

// Sentinels matched with errors.Is against any *Error of the same kind.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrUnexpected      = errors.New("unexpected error")
)

// UnexpectedMessage is the user-safe text for failures nobody classified.
const UnexpectedMessage = "Error processing weather data. Try again later."

// Error is a classified lookup failure. Message is safe to show to callers;
// Err holds the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// NewError returns a classified error for op.
func NewError(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindNotFound:
		return ErrNotFound
	case KindTimeout:
		return ErrTimeout
	case KindUpstreamFailure:
		return ErrUpstreamFailure
	default:
		return ErrUnexpected
	}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// UserMessage returns the caller-facing message for err. Unclassified errors
// never leak their text.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return UnexpectedMessage
}
