package server

import (
	"regexp"
)

// Registry adapters authenticate with API keys, and failed requests can echo
// the full URL or header into the log stream. Lines leaving the process
// through the status tool get redacted first.
var credentialPatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regex: regexp.MustCompile(`(?i)api_key=[^\s"]+`), replacement: "api_key=[redacted]"},
	{regex: regexp.MustCompile(`(?i)apikey=[^\s"]+`), replacement: "apikey=[redacted]"},
	{regex: regexp.MustCompile(`(?i)token=[^\s"]+`), replacement: "token=[redacted]"},
	{regex: regexp.MustCompile(`(?i)secret=[^\s"]+`), replacement: "secret=[redacted]"},
	{regex: regexp.MustCompile(`(?i)password=[^\s"]+`), replacement: "password=[redacted]"},
	{regex: regexp.MustCompile(`(?i)authorization:\s*bearer\s+[a-z0-9\-._~+/=]+`), replacement: "authorization: Bearer [redacted]"},
	{regex: regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-._~+/=]{8,}`), replacement: "Bearer [redacted]"},
	{regex: regexp.MustCompile(`(?i)https?://[^:@\s]+:[^@\s]+@`), replacement: "https://[redacted]:[redacted]@"},
	{regex: regexp.MustCompile(`(?i)(password|secret|token)\s*"[^"]+"`), replacement: "$1\"[redacted]\""},
}

// SanitizeLogLines redacts credential-shaped values from log lines before
// they are exposed to clients.
func SanitizeLogLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		for _, p := range credentialPatterns {
			l = p.regex.ReplaceAllString(l, p.replacement)
		}
		out[i] = l
	}
	return out
}
