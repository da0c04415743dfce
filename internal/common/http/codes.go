package http

const (
	CodeInternal         = "INTERNAL_ERROR"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeRequestTooLarge  = "REQUEST_TOO_LARGE"
)
