package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these so the service
// and HTTP layers can classify failures without importing adapter packages.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Quote Feed Specific Errors
	ErrQuoteUnavailable = errors.New("quote source is unavailable")
	ErrQuoteNotFound    = errors.New("no quote for symbol")
	ErrRateLimited      = errors.New("quote API rate limit exceeded")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")
	ErrDeleteFailed   = errors.New("database delete failed")
)
