package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projecthub/projecthub-api/internal/constants"
	apierrors "github.com/projecthub/projecthub-api/internal/errors"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/repository"
	"github.com/projecthub/projecthub-api/internal/services"
	"gorm.io/gorm"
)

// extractToken reads the token from the Authorization header, with or
// without a Bearer prefix, falling back to the token cookie.
func extractToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}

	if cookie, err := c.Cookie(constants.TokenCookieName); err == nil {
		return cookie
	}
	return ""
}

// authenticate verifies the request token and stores the identity in the
// context. It aborts the chain and returns false on failure.
func authenticate(c *gin.Context, tokens *services.TokenService) bool {
	token := extractToken(c)
	if token == "" {
		apierrors.Unauthorized(c, "Authentication token is missing")
		return false
	}

	claims, err := tokens.Verify(token, constants.TokenPurposeAccess)
	if err != nil {
		apierrors.InvalidToken(c, "")
		return false
	}

	c.Set(constants.ContextKeyUserID, claims.UserID)
	c.Set(constants.ContextKeyUserRole, claims.Role)
	return true
}

// RequireSignIn checks that the request carries a valid access token
func RequireSignIn(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens) {
			return
		}
		c.Next()
	}
}

// CheckRole permits the request only if the persisted role of the current
// user is one of roles. It authenticates the request itself when no earlier
// middleware has.
func CheckRole(tokens *services.TokenService, users repository.UserRepository, logger *slog.Logger, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			if !authenticate(c, tokens) {
				return
			}
			userID, _ = GetUserID(c)
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Unauthorized(c, "User no longer exists")
				return
			}
			logger.ErrorContext(c.Request.Context(), "failed to load user for role check",
				slog.Uint64("user_id", userID),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(c, "")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Set(constants.ContextKeyUserRole, user.Role)
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Access denied: insufficient role")
	}
}

// IsCustomer permits only users whose role is customer
func IsCustomer(tokens *services.TokenService, users repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return CheckRole(tokens, users, logger, models.RoleCustomer)
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUserRole retrieves the current user's role from context
func GetUserRole(c *gin.Context) (models.Role, bool) {
	role, exists := c.Get(constants.ContextKeyUserRole)
	if !exists {
		return "", false
	}
	r, ok := role.(models.Role)
	return r, ok
}
