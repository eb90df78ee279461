package logger

import (
	"regexp"
	"strings"

	"cdr.dev/slog/v3"
)

// Sensitive field patterns to filter from logs
var (
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s]+`)
	tokenPattern    = regexp.MustCompile(`(?i)(token|jwt|bearer)[\s:=]+[^\s]+`)
	apiKeyPattern   = regexp.MustCompile(`(?i)(api[_-]?key|apikey|x-service-key)[\s:=]+[^\s]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|private[_-]?key|salt)[\s:=]+[^\s]+`)
)

const redactedPlaceholder = "[REDACTED]"

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"token", "jwt", "bearer", "authorization",
	"api_key", "apikey", "api-key", "service-key", "service_key",
	"secret", "private_key", "private-key", "salt",
}

// SanitizeLogMessage removes credentials from free-form text such as error
// strings returned by drivers and SDKs.
func SanitizeLogMessage(message string) string {
	for _, p := range []*regexp.Regexp{passwordPattern, tokenPattern, apiKeyPattern, secretPattern} {
		message = p.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	}
	return message
}

// IsSensitiveKey reports whether a field or header name carries credentials.
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitiveKey := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitiveKey) {
			return true
		}
	}
	return false
}

// F is slog.F with the value replaced when name is sensitive.
func F(name string, value interface{}) slog.Field {
	if IsSensitiveKey(name) {
		return slog.F(name, redactedPlaceholder)
	}
	if s, ok := value.(string); ok {
		return slog.F(name, SanitizeLogMessage(s))
	}
	return slog.F(name, value)
}

// Error is slog.Error with the message passed through SanitizeLogMessage.
func Error(err error) slog.Field {
	if err == nil {
		return slog.F("error", nil)
	}
	return slog.F("error", SanitizeLogMessage(err.Error()))
}

// SanitizeMap removes sensitive keys from a map
func SanitizeMap(data map[string]interface{}) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(data))
	for k, v := range data {
		if IsSensitiveKey(k) {
			sanitized[k] = redactedPlaceholder
		} else {
			sanitized[k] = v
		}
	}
	return sanitized
}
