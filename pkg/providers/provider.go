package providers

// Call is a fully built vendor HTTP request: a JSON POST to URL.
type Call struct {
	// URL is the absolute endpoint URL
	URL string

	// Headers are set on the request (authentication, content type)
	Headers map[string]string

	// Body is marshalled to JSON
	Body any
}

// Adapter pairs the request builder and the response parser of one vendor
// wire shape. Adapters are plain values; the dispatcher picks one per
// ProviderTag from a fixed table.
//
// Example:
//
//	adapter := openai.NewAdapter(providers.ProviderDeepSeek, openai.Config{})
//	call, err := adapter.Build(req)
//	if err != nil {
//	    return err
//	}
//	body, err := transport.Do(ctx, adapter.Tag, call)
//	if err != nil {
//	    return err
//	}
//	text, err := adapter.Parse(body)
type Adapter struct {
	// Tag is the provider this adapter serves
	Tag ProviderTag

	// Build converts a provider-agnostic request into a vendor call.
	// The credential for Tag is guaranteed to be non-empty.
	Build func(req Request) (Call, error)

	// Parse extracts markdown text from a 2xx vendor response body.
	// It returns an empty string when the response carries no content.
	Parse func(body []byte) (string, error)
}
