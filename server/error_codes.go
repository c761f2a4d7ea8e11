package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidBlocks   = 1003
	ErrCodeInvalidImage    = 1004

	// Domain state (2xxx)
	ErrCodeBlogNotFound  = 2001
	ErrCodeRouteNotFound = 2002
	ErrCodeEmailTaken    = 2101

	// Auth (3xxx)
	ErrCodeUnauthorized       = 3001
	ErrCodeForbidden          = 3002
	ErrCodeInvalidCredentials = 3003

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
	ErrCodeMediaFailure = 4003
	ErrCodeStoreDown    = 4004
)
