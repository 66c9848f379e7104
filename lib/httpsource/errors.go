package httpsource

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the source answered with a non-2xx status code.
// Callers treat it as "this file is not published (yet)" and skip it.
type StatusError struct {
	URL        string
	StatusCode int
}

func (s StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d (%s) for %q", s.StatusCode, http.StatusText(s.StatusCode), s.URL)
}

func IsStatusError(err error) bool {
	var statusErr StatusError
	return errors.As(err, &statusErr)
}

func isRetryableError(err error) bool {
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError || statusErr.StatusCode == http.StatusTooManyRequests
	}

	return true
}
