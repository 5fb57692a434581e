package problems

const (
	ContentTypeProblemJSON    = "application/problem+json"
	StatusClientClosedRequest = 499

	ProblemTypeValidation  = "validation_error"
	ProblemTypeInvalidJSON = "invalid_json"
	ProblemTypeNotFound    = "about:blank"
	ProblemTypeConflict    = "conflict"
	ProblemTypeTimeout     = "timeout"
	ProblemTypeInternal    = "internal_error"
	ProblemTypeCanceled    = "client_cancelled"
	ProblemTypeExhausted   = "code_generation_exhausted"
	ProblemTypeStore       = "store_unavailable"

	TitleBadRequest      = "Bad Request"
	TitleValidation      = "Validation error"
	TitleConflict        = "Conflict"
	TitleNotFound        = "Not Found"
	TitleGatewayTimeout  = "Gateway Timeout"
	TitleRequestCanceled = "Request Canceled"
	TitleInternalError   = "Internal Server Error"

	DetailInvalidURL         = "targetUrl must be an absolute http or https URL"
	DetailInvalidCode        = "customCode must be 6 to 8 letters or digits"
	DetailInvalidJSON        = "invalid json"
	DetailCodeConflict       = "code already exists"
	DetailNotFound           = "not found"
	DetailTimeout            = "timeout"
	DetailRequestCanceled    = "request canceled"
	DetailInternalError      = "internal error"
	DetailExhausted          = "could not allocate a unique code, try again"
	DetailStoreUnavailable   = "storage unavailable"
	DetailValidationMultiple = "request has invalid fields"
)
