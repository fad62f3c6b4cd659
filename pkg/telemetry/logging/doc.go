// Package logging builds the structured logger used across Nebula.
//
// New returns a plain *slog.Logger so that every package can accept one
// without importing this package:
//
//	logger, err := logging.New(logging.Config{
//	    Level:      "info",
//	    Format:     "json",
//	    RedactKeys: true,
//	})
//
//	logger.Info("send finished", "provider", "openai", "api_key", key) // api_key is masked
//
// # Redaction
//
// With RedactKeys enabled, attribute values are scanned for vendor
// credentials before they are written:
//
//   - OpenAI and DeepSeek keys: sk-abc123 becomes sk-***
//   - Gemini keys: AIzaSy... becomes AIza***
//   - xAI keys: xai-abc123 becomes xai-***
//   - Bearer tokens and ?key= query parameters
//
// Attributes whose name suggests a secret (api_key, token, authorization)
// keep only a four character prefix.
//
// # Context
//
// WithUser, WithModel, WithProvider and WithNode store values in a context;
// records logged through InfoContext and friends carry them as attributes.
package logging
