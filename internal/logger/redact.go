package logger

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Keys are matched case-insensitively as substrings, so "db_password" and
// "keychainSecret" are both caught.
var sensitiveKeyParts = []string{
	"password",
	"passwd",
	"passphrase",
	"secret",
	"token",
	"credential",
	"auth",
}

var sensitiveValues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*`),
	regexp.MustCompile(`(?i)\b(password|passwd|secret|auth[_-]?token)\b\s*[:=]\s*\S+`),
	regexp.MustCompile(`(?i)\bDBDESK_PASSWORD=\S+`),
	regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://[^/\s:@]+:[^/\s@]+@`),
}

// RedactAttr is a slog.ReplaceAttr func that blanks credentials, either by
// attribute key or by a recognisable secret inside the value.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitive(a) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func isSensitive(a slog.Attr) bool {
	key := strings.ToLower(a.Key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}

	var value string
	if a.Value.Kind() == slog.KindString {
		value = a.Value.String()
	} else {
		value = fmt.Sprint(a.Value.Any())
	}
	if value == "" {
		return false
	}
	for _, re := range sensitiveValues {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
