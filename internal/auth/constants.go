package auth

const (
	jsonKeyError = "error"

	headerAuthorization = "Authorization"
	headerServiceKey    = "X-Service-Key"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	contextKeyServiceCaller = "authz.service_caller"
)

const (
	msgMissingAuthorization    = "missing authorization token"
	msgInvalidOrExpiredToken   = "invalid or expired token"
	msgMissingServiceKey       = "missing service key"
	msgInvalidServiceKey       = "invalid service key"
	msgSubjectUnresolved       = "subject could not be resolved"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgMissingSubjectClaim     = "token has no subject"
	msgInvalidKeyHashFmt       = "service key hash %d is not %d hex-encoded bytes"
	msgResolveRoleFmt          = "resolve role of %s: %w"
)
