package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/rmcatalog/internal/common"
)

var (
	ErrUnavailable = errors.New("remote API unavailable")
	ErrBadResponse = errors.New("malformed response from remote API")
)

// StatusError is returned when the remote API answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Is makes a 404 match common.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == common.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is (or wraps) a remote 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
