package wp

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means no API base URL is set. No request was made.
	ErrNotConfigured = errors.New("wp: WORDPRESS_API_URL is not set")
	// ErrNotFound means a slug lookup returned no match.
	ErrNotFound = errors.New("wp: not found")
	// ErrUnreachable covers transport failures, non-2xx statuses and
	// payloads that do not decode.
	ErrUnreachable = errors.New("wp: upstream unreachable")
)

// UpstreamError describes a failed WordPress request.
type UpstreamError struct {
	Op     string
	URL    string
	Status int // 0 when no response arrived
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("wp: %s: %s returned %d", e.Op, e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("wp: %s: %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("wp: %s: %s failed", e.Op, e.URL)
}

// Unwrap lets errors.Is match both ErrUnreachable and the transport cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnreachable, e.Err}
	}
	return []error{ErrUnreachable}
}
