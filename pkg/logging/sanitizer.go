// Package logging redacts credentials before they reach log output.
package logging

import (
	"regexp"
)

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Pattern to match API keys passed as query or form parameters.
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// Pattern to match bearer tokens in authorization headers.
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_.]+`)

	// Pattern to match URL userinfo credentials (user:pass@host).
	userinfoPattern = regexp.MustCompile(`://[^:/\s]+:[^@/\s]+@[^/\s]+`)
)

// SanitizeURL removes credentials from an endpoint URL. Some local
// OpenAI-compatible gateways carry the key as a query parameter, so the
// endpoint is sanitized before logging.
func SanitizeURL(url string) string {
	if url == "" {
		return ""
	}
	sanitized := apiKeyPattern.ReplaceAllString(url, "${1}="+RedactedText)
	return userinfoPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeError sanitizes error messages that might echo request headers or
// URLs containing credentials. Use this before logging any error from the
// LLM backend.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := apiKeyPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	return userinfoPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}
