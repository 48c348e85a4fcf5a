package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when the provider secret cannot be loaded.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidURL is returned when a request target cannot be built or used.
	ErrInvalidURL = errors.New("invalid url")
	// ErrDecode is returned when a response body is not a JSON object at all.
	ErrDecode = errors.New("decode error")
	// ErrServer matches every *ServerError through errors.Is.
	ErrServer = errors.New("server error")
	// ErrLocation is returned when the location backend cannot produce a fix.
	ErrLocation = errors.New("location failure")
)

// ServerError reports a non-200 provider response.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: unexpected status code %d", e.Status)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}
