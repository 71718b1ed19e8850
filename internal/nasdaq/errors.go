package nasdaq

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRejected means the API refused the session cookies.
	// The client handles it once by rejecting the credential and retrying.
	ErrAuthenticationRejected = errors.New("authentication rejected")

	// ErrTransport matches every *TransportError via errors.Is.
	ErrTransport = errors.New("transport error")
)

// TransportError is a network or HTTP failure unrelated to credentials.
// It is never retried by the client.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int // 0 when no response arrived
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) hold for any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }
