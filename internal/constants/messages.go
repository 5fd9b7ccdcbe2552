package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "error" field.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "Internal Server Error"

	// Shortener-specific messages
	MsgMissingURL          = "Missing originalUrl"
	MsgInvalidURL          = "Invalid URL format"
	MsgInvalidSlugLength   = "Custom slug must be between 3 and 30 characters"
	MsgInvalidSlugChars    = "Custom slug may only contain letters, digits, '-' and '_'"
	MsgSlugTaken           = "Custom slug is already taken"
	MsgGenerationExhausted = "Failed to generate short link. Please try again."
	MsgLinkNotFound        = "Link not found"
)
