package errors

// ErrorCode is a machine-readable error code. It is logged, never sent to clients.
type ErrorCode string

// Client errors
const (
	// ErrCodeMissingInput indicates a required request field was absent.
	ErrCodeMissingInput ErrorCode = "MISSING_INPUT"
	// ErrCodeInvalidInput indicates a request field could not be parsed.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeUnauthorized indicates the bearer secret did not match.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeNotFound indicates the requested object does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeRouteNotFound indicates no handler matched the method and path.
	ErrCodeRouteNotFound ErrorCode = "ROUTE_NOT_FOUND"
	// ErrCodePayloadTooLarge indicates the request body exceeded the configured limit.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Server errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeStorage indicates the object store rejected or failed an operation.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
)
