package constants

// Context keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Auth
const (
	TokenCookieName   = "token"
	MinPasswordLength = 6
	OTPLength         = 6
)

// Token purposes
const (
	TokenPurposeAccess = "access"
	TokenPurposeReset  = "reset"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AI
const (
	MaxAIGeneratedTasks = 20
)
