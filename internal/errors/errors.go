package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error types
const (
	// Input errors
	TypeValidation = "validationError"
	TypeConflict   = "conflictError"
	TypeNotFound   = "notFoundError"

	// Authentication errors
	TypeUnauthorized       = "unauthorized"
	TypeInvalidCredentials = "invalidCredentials"
	TypeInvalidToken       = "invalidToken"
	TypeExpiredToken       = "expiredToken"
	TypeInvalidOTP         = "invalidOrExpiredOTP"

	// Authorization errors
	TypeForbidden = "forbidden"

	// Service errors
	TypeTooManyRequests    = "tooManyRequests"
	TypeServerError        = "serverError"
	TypeServiceUnavailable = "serviceUnavailable"
)

// ErrorDetail is the machine-readable part of an error response.
type ErrorDetail struct {
	Code       int    `json:"code"`
	Type       string `json:"type"`
	Resolution string `json:"resolution,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Detail  ErrorDetail `json:"error"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Status returns the HTTP status code carried by the error.
func (e *APIError) Status() int {
	return e.Detail.Code
}

// NewAPIError creates a new APIError
func NewAPIError(status int, errType, message string) *APIError {
	return &APIError{
		Message: message,
		Detail: ErrorDetail{
			Code: status,
			Type: errType,
		},
	}
}

// WithResolution returns a copy of e carrying a user-facing hint.
func (e *APIError) WithResolution(resolution string) *APIError {
	cp := *e
	cp.Detail.Resolution = resolution
	return &cp
}

// RespondWithError sends an error response and aborts the handler chain.
func RespondWithError(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.Status(), err)
}

// Helper functions for common error responses

func withDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

// BadRequest sends a 400 validation response
func BadRequest(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, TypeValidation, withDefault(message, "Invalid request")))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message, resolution string) {
	RespondWithError(c, NewAPIError(http.StatusConflict, TypeConflict, withDefault(message, "Resource conflict")).WithResolution(resolution))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusNotFound, TypeNotFound, withDefault(message, "Resource not found")))
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusUnauthorized, TypeUnauthorized, withDefault(message, "Authentication required")))
}

// InvalidCredentials sends a 401 response for a failed password check
func InvalidCredentials(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusUnauthorized, TypeInvalidCredentials, withDefault(message, "Invalid credentials")).
		WithResolution("Please check your email and password."))
}

// InvalidToken sends a 401 response for a token that failed verification
func InvalidToken(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusUnauthorized, TypeInvalidToken, withDefault(message, "Invalid or expired token")))
}

// ExpiredToken sends a 400 response for a well-formed token that is no longer accepted
func ExpiredToken(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, TypeExpiredToken, withDefault(message, "Invalid or expired token")))
}

// InvalidOTP sends a 400 response for a wrong or stale one-time code
func InvalidOTP(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, TypeInvalidOTP, withDefault(message, "Invalid or expired OTP")))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusForbidden, TypeForbidden, withDefault(message, "Access denied")))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusTooManyRequests, TypeTooManyRequests, withDefault(message, "Too many requests")).
		WithResolution("Please wait a moment and try again."))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, TypeServerError, withDefault(message, "Internal server error")))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusServiceUnavailable, TypeServiceUnavailable, withDefault(message, "Service temporarily unavailable")))
}
