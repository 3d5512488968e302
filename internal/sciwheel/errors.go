package sciwheel

import (
	"fmt"
)

// RemoteProtocolError is returned when a response body is not valid JSON
type RemoteProtocolError struct {
	URL    string
	Status string
	Body   []byte
	Err    error
}

func (e *RemoteProtocolError) Error() string {
	return fmt.Sprintf("invalid JSON response from %s (status %s, body %q): %v", e.URL, e.Status, truncate(e.Body, 200), e.Err)
}

func (e *RemoteProtocolError) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
