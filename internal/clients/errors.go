package clients

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned for a data-source key that is not in the
// route table. No request is made.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown data source %q", e.Key)
}

// NetworkFailure is a transport-level error: DNS, refused connection, timeout.
type NetworkFailure struct {
	Endpoint string
	Err      error
}

func (e *NetworkFailure) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkFailure) Unwrap() error { return e.Err }

// ServerError is a non-2xx status or an {"error": ...} body.
type ServerError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}

// FetchFailure wraps whatever went wrong while fetching one summary.
type FetchFailure struct {
	Source string
	Err    error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("fetch summary %q: %v", e.Source, e.Err)
}

func (e *FetchFailure) Unwrap() error { return e.Err }

// UserMessage converts err into text that is safe to show. Server-supplied
// messages pass through, everything else becomes the generic retry message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var configErr *ConfigurationError
	if errors.As(err, &configErr) {
		return configErr.Error()
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}

	return GENERIC_FAILURE_MESSAGE
}
