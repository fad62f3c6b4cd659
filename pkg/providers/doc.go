// Package providers defines the provider-agnostic data model shared by the
// dispatcher and the vendor adapters.
//
// # Overview
//
// Four vendors are supported, identified by a closed set of ProviderTag
// values: google, openai, deepseek and xai. Google speaks the Gemini
// generateContent API (package google); the other three share the chat
// completions shape (package openai).
//
// Every vendor is reduced to an Adapter, a pair of pure functions:
//
//  1. Build turns a Request into a Call (URL, headers, JSON body)
//  2. Parse turns a 2xx response body into markdown text
//
// The Transport performs the single HTTP POST in between.
//
// # Errors
//
// Failures are reported with typed errors that can be inspected with
// errors.As:
//
//   - UnsupportedProviderError: the tag is not one of the four vendors
//   - MissingCredentialError: no API key for the selected vendor
//   - ValidationError: the request is incomplete
//   - VendorHTTPError: the vendor answered with a non-2xx status
//   - NetworkError: transport failure or timeout
//   - ParseError: the vendor answered 2xx with a malformed body
//
// ErrorKind maps any of these to a short stable label for logs and metrics.
//
// # Retries
//
// Nothing is retried. A send either completes within the transport timeout
// or fails.
package providers
