package logger

import (
	"log/slog"
	"strings"
)

// Well-known credential prefixes that show up in task environments.
var sensitiveValuePrefixes = []string{
	"github_pat_",
	"ghp_",
	"gho_",
	"ghs_",
	"glpat-",
	"npm_",
}

// Key fragments that mark an attribute as sensitive.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"auth",
	"bearer",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks credential-looking string values and fully redacts
// values under sensitive keys. Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if prefix, ok := sensitivePrefix(v); ok {
			return slog.String(a.Key, maskValue(v, prefix))
		}
		if v != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

func sensitivePrefix(v string) (string, bool) {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(v, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// maskValue keeps the prefix and a three-character hint at each end.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// RedactString masks value if it looks like a known credential.
func RedactString(value string) string {
	if prefix, ok := sensitivePrefix(value); ok {
		return maskValue(value, prefix)
	}
	return value
}

// RedactEnv returns "KEY=VALUE" with VALUE redacted when KEY or VALUE
// looks sensitive.
func RedactEnv(kv string) string {
	key, value, ok := strings.Cut(kv, "=")
	if !ok || value == "" {
		return kv
	}
	if IsSensitiveKey(key) {
		return key + "=" + redactedValue
	}
	return key + "=" + RedactString(value)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value looks like a known credential.
func IsSensitiveValue(value string) bool {
	_, ok := sensitivePrefix(value)
	return ok
}
