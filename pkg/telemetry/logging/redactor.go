package logging

import (
	"regexp"
	"strings"

	"nebula-hq/nebula/pkg/config"
)

// Redactor masks provider credentials in log values.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternOpenAIKey   = "openai_key"
	PatternGoogleKey   = "google_key"
	PatternXAIKey      = "xai_key"
	PatternBearerToken = "bearer_token"
	PatternKeyParam    = "key_param"
)

// defaultPatterns cover the key formats of the supported vendors. Order
// matters: bearer tokens are masked before the bare key patterns run.
var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternBearerToken, `Bearer\s+[A-Za-z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternOpenAIKey, `sk-[A-Za-z0-9\-_]{4,}`, "sk-***"},
	{PatternGoogleKey, `AIza[0-9A-Za-z\-_]{4,}`, "AIza***"},
	{PatternXAIKey, `xai-[A-Za-z0-9\-_]{4,}`, "xai-***"},
	{PatternKeyParam, `([?&]key=)[^&\s"]+`, "${1}***"},
}

// NewRedactor creates a Redactor with the built-in patterns plus custom
// ones. Custom patterns that fail to compile are skipped; config validation
// reports them.
func NewRedactor(custom []config.RedactPattern) *Redactor {
	r := &Redactor{patterns: make([]redactPattern, 0, len(defaultPatterns)+len(custom))}

	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// RedactString masks every credential found in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// IsSensitiveKey reports whether an attribute key names a secret.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if lower == "key" {
		return true
	}
	for _, s := range []string{"api_key", "apikey", "api-key", "secret", "token", "authorization", "password"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// RedactAPIKey masks an API key, keeping only a short prefix for
// identification.
func RedactAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "***"
}
