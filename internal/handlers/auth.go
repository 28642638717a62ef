package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projecthub/projecthub-api/internal/config"
	"github.com/projecthub/projecthub-api/internal/constants"
	"github.com/projecthub/projecthub-api/internal/dto"
	apierrors "github.com/projecthub/projecthub-api/internal/errors"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/notify"
	"github.com/projecthub/projecthub-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService  *services.AuthService
	cookieSecure bool
	cookieMaxAge int
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cfg.App.CookieSecure,
		cookieMaxAge: int(cfg.Auth.AccessTokenTTL.Seconds()),
		logger:       logger,
	}
}

// Register creates an account and sends the verification codes.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Name     string          `json:"name"`
		Email    string          `json:"email"`
		Password string          `json:"password"`
		Phone    string          `json:"phone"`
		Role     models.Role     `json:"role"`
		Profile  *models.Profile `json:"profile"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
		Profile:  req.Profile,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "User registered successfully. Please verify your email and phone.",
		Token:   token,
		User:    dto.ToUserDTO(*user),
	})
}

// VerifyOTP confirms an email or phone one-time code.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	type VerifyOTPRequest struct {
		Email   string `json:"email"`
		OTP     string `json:"otp"`
		Channel string `json:"channel"`
	}

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.authService.VerifyOTP(c.Request.Context(), services.VerifyOTPInput{
		Email:   req.Email,
		OTP:     req.OTP,
		Channel: notify.Channel(req.Channel),
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OTP verified successfully",
	})
}

// Login authenticates a user and sets the token cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.setTokenCookie(c, token, h.cookieMaxAge)
	c.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    dto.ToUserDTO(*user),
	})
}

// ForgotPassword emails a password reset link.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset link sent to your email",
	})
}

// ResetPassword sets a new password using a reset token. The token may come
// from the body or the query string of the reset link.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	err := h.authService.ResetPassword(c.Request.Context(), services.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password has been reset successfully",
	})
}

// Logout clears the token cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UserDashboard greets users with the user role.
func (h *AuthHandler) UserDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome to the user dashboard",
	})
}

// CustomerDashboard greets users with the customer role.
func (h *AuthHandler) CustomerDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome to the customer dashboard",
	})
}

// ListUsers returns every registered user.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   dto.ToUserDTOs(users),
	})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.TokenCookieName, token, maxAge, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrRegistrationFieldsRequired),
		errors.Is(err, services.ErrCredentialsRequired),
		errors.Is(err, services.ErrOTPFieldsRequired),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidChannel),
		errors.Is(err, models.ErrProfileKindMismatch),
		errors.Is(err, models.ErrProfileVariantAmbiguous),
		errors.Is(err, models.ErrProfileNotSupported):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "Email already registered", "Log in instead or use a different email address.")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrEmailNotVerified):
		apierrors.Unauthorized(c, "Please verify your email before logging in")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, "Invalid email or password")
	case errors.Is(err, services.ErrInvalidOTP):
		apierrors.InvalidOTP(c, "")
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.InvalidToken(c, "")
	case errors.Is(err, services.ErrResetTokenExpired):
		apierrors.ExpiredToken(c, "Reset token is invalid or has expired")
	default:
		serverError(c, h.logger, err)
	}
}
