package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"

	// BadgeComplete marks a letter item spelled correctly
	BadgeComplete = "star"

	// AudioPathPrefix is where pronunciation files are served
	AudioPathPrefix = "/audio/"

	// EmptySlot is how an unfilled letter slot is rendered
	EmptySlot = "_"

	maxBodyBytes = 1 << 16
)
