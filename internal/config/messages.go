package config

import "fmt"

const (
	errRequiredEnvNotSetFmt    = "required environment variable %s is not set"
	errRequiredForFmt          = "%s must be set when %s=%s"
	errInvalidConfigurationFmt = "invalid configuration: %w"
	errInvalidChoiceFmt        = "%s=%q is not one of: %s"
	errPortRequired            = "PORT must be set"
	errAWSKeyPairFmt           = "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together"
	errNegativeDurationFmt     = "%s must not be negative"
	errDBConnBoundsFmt         = "DB_MIN_CONNS must not exceed DB_MAX_CONNS"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropy     = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errServiceKeySaltFmt       = "%s must be at least %d characters when service API keys are configured"
	errRateLimitFmt            = "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"
	errAuthRateLimitMsg        = "RATE_LIMIT_AUTH_RPS and RATE_LIMIT_AUTH_BURST must be positive"
	errPositiveIntFmt          = "%s must be positive"
)

type messageBuilders struct {
	requiredEnvNotSet func(string) string
	requiredFor       func(key, selector, value string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) string {
			return fmt.Sprintf(errRequiredEnvNotSetFmt, key)
		},
		requiredFor: func(key, selector, value string) string {
			return fmt.Sprintf(errRequiredForFmt, key, selector, value)
		},
	}
}

var messages = newMessageBuilders()
