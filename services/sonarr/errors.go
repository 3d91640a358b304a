package sonarr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource doesn't exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrUnreachable indicates the upstream service could not be reached at
	// the network level (timeout, refused connection, DNS failure).
	ErrUnreachable = errors.New("sonarr unreachable")
)

// UpstreamError is returned for any non-2xx upstream response other than 404.
type UpstreamError struct {
	Status int
	Op     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("sonarr %s failed: upstream status %d", e.Op, e.Status)
}

func notFoundErr(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
