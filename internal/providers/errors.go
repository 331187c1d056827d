package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigurationMissing = errors.New("providers: credential not configured")
	ErrMalformedResponse    = errors.New("providers: malformed response")
)

// RequestFailedError is a non-200 reply from the vendor. Body is kept for
// diagnostics and is not part of Error().
type RequestFailedError struct {
	Vendor     SourceName
	StatusCode int
	Body       string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("%s http %d", strings.ToLower(string(e.Vendor)), e.StatusCode)
}

// TransportError means the vendor was never reached or did not answer in time.
type TransportError struct {
	Vendor SourceName
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", strings.ToLower(string(e.Vendor)), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

const (
	KindConfigurationMissing = "configuration_missing"
	KindTransport            = "transport_error"
	KindRequestFailed        = "request_failed"
	KindMalformedResponse    = "malformed_response"
	KindUnknown              = "unknown"
)

// Kind classifies err into one of the Kind* codes.
func Kind(err error) string {
	var rf *RequestFailedError
	var te *TransportError
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return KindConfigurationMissing
	case errors.As(err, &rf):
		return KindRequestFailed
	case errors.As(err, &te):
		return KindTransport
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	default:
		return KindUnknown
	}
}

func malformed(vendor SourceName, detail string) error {
	return fmt.Errorf("%w: %s %s", ErrMalformedResponse, strings.ToLower(string(vendor)), detail)
}
