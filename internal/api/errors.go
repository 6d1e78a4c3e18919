package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyInput is returned when a blank question is submitted. No request
// is sent.
var ErrEmptyInput = errors.New("question is empty")

// ErrorKind classifies a failed chat request.
type ErrorKind int

const (
	// KindTransport covers network failures and non-2xx responses.
	KindTransport ErrorKind = iota
	// KindMalformed is a 2xx response whose body is not JSON.
	KindMalformed
	// KindTimeout is a request that exceeded the configured timeout.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed_response"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// RequestError is returned by Client.Chat for every failed request.
type RequestError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Timeout    time.Duration
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Kind == KindTimeout:
		return fmt.Sprintf("request timed out after %s", e.Timeout)
	case e.Kind == KindMalformed:
		return fmt.Sprintf("parsing response: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a RequestError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
