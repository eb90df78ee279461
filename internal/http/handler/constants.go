package handler

const (
	jsonKeyError  = "error"
	jsonKeyStatus = "status"

	paramRole = "role"

	statusOK    = "ok"
	statusReady = "ready"

	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgUnknownPermission       = "unknown permission"
	msgUnknownRole             = "unknown role"
	msgNotReady                = "grant table not loaded"
	msgSubjectUnresolved       = "subject could not be resolved"
	msgNoSubject               = "no authenticated subject"
	msgGrantTableRejected      = "grant table rejected, previous table kept"
	msgInvalidQuery            = "invalid query"
)

// Operation names recorded with each decision.
const (
	opCan               = "can"
	opHasAnyPermission  = "has_any_permission"
	opHasAllPermissions = "has_all_permissions"
	opHasRole           = "has_role"
	opHasAnyRole        = "has_any_role"
	opGrants            = "grants"
)
