package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "code" field.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeNotFound       = "NOT_FOUND"

	// Shortener-specific codes
	CodeMissingURL          = "MISSING_URL"
	CodeInvalidURL          = "INVALID_URL"
	CodeInvalidSlug         = "INVALID_SLUG"
	CodeSlugTaken           = "SLUG_TAKEN"
	CodeGenerationExhausted = "SLUG_GENERATION_FAILED"
	CodeLinkNotFound        = "LINK_NOT_FOUND"

	// Success codes
	CodeLinkCreated = "LINK_CREATED"
	CodeLinkFound   = "LINK_FOUND"
)
