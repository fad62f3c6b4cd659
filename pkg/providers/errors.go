package providers

import (
	"errors"
	"fmt"
	"time"
)

// UnsupportedProviderError is returned for a provider tag outside the closed set.
type UnsupportedProviderError struct {
	// Provider is the rejected tag as given by the caller
	Provider string
}

// Error implements the error interface.
func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q (supported: google, openai, deepseek, xai)", e.Provider)
}

// MissingCredentialError is returned when the API key for the resolved
// provider is empty. No request is issued in that case.
type MissingCredentialError struct {
	// Provider is the provider whose key is missing
	Provider ProviderTag
}

// Error implements the error interface.
func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("provider %q: API key is not configured", e.Provider)
}

// VendorHTTPError represents a non-2xx answer from a vendor.
// Body carries the raw response body verbatim.
type VendorHTTPError struct {
	// Provider is the provider that answered
	Provider ProviderTag

	// StatusCode is the HTTP status code
	StatusCode int

	// Body is the raw response body
	Body string
}

// Error implements the error interface.
func (e *VendorHTTPError) Error() string {
	return fmt.Sprintf("provider %q API error (%d): %s", e.Provider, e.StatusCode, e.Body)
}

// NetworkError represents a timeout or transport-level failure.
type NetworkError struct {
	// Provider is the provider being called (empty for probes)
	Provider ProviderTag

	// Op is the operation that failed ("send" or "probe")
	Op string

	// Timeout is set when the failure was a deadline
	Timeout time.Duration

	// Cause is the underlying transport error
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("provider %q %s timed out after %s", e.Provider, e.Op, e.Timeout)
	}
	return fmt.Sprintf("provider %q %s failed: %v", e.Provider, e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// ParseError represents a 2xx response whose body could not be decoded.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider ProviderTag

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a request rejected before it was sent.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// Error kind labels returned by ErrorKind.
const (
	KindUnsupportedProvider = "unsupported_provider"
	KindMissingCredential   = "missing_credential"
	KindVendorHTTP          = "vendor_http"
	KindNetwork             = "network"
	KindParse               = "parse"
	KindValidation          = "validation"
	KindUnknown             = "unknown"
)

// ErrorKind maps err to a stable label for metrics and logs.
func ErrorKind(err error) string {
	var (
		unsupported *UnsupportedProviderError
		missing     *MissingCredentialError
		vendor      *VendorHTTPError
		network     *NetworkError
		parse       *ParseError
		validation  *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unsupported):
		return KindUnsupportedProvider
	case errors.As(err, &missing):
		return KindMissingCredential
	case errors.As(err, &vendor):
		return KindVendorHTTP
	case errors.As(err, &network):
		return KindNetwork
	case errors.As(err, &parse):
		return KindParse
	case errors.As(err, &validation):
		return KindValidation
	}
	return KindUnknown
}
