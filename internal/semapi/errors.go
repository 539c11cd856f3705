package semapi

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API call.
type Kind string

const (
	// KindTransport means no response was received.
	KindTransport Kind = "transport"
	// KindServer means the API answered with a non-success status.
	KindServer Kind = "server"
	// KindDecode means the response body could not be decoded.
	KindDecode Kind = "decode"
)

// Error is the single error type returned by Client for any failed call.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		return fmt.Sprintf("%s: API error (%d): %s", e.Op, e.Status, e.Message)
	case KindTransport:
		return fmt.Sprintf("%s: unable to reach API: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: decoding response: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}
