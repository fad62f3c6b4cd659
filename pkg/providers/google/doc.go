// Package google builds and parses requests for the Gemini generateContent
// REST API.
//
// The adapter returned by NewAdapter posts to
//
//	{base}/v1beta/models/{model}:generateContent
//
// with the API key in the x-goog-api-key header. The base URL is either the
// direct endpoint or the active relay node passed as Request.BaseURLOverride.
//
// Images and PDFs are sent as inline data parts; other attachments are
// inlined as text. Generated images in a response are re-encoded as
// markdown data-URI images so every reply is plain markdown.
package google
