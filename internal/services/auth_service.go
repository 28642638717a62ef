package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/projecthub/projecthub-api/internal/config"
	"github.com/projecthub/projecthub-api/internal/constants"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/notify"
	"github.com/projecthub/projecthub-api/internal/repository"
	"github.com/projecthub/projecthub-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrRegistrationFieldsRequired = errors.New("name, email, password and phone are required")
	ErrCredentialsRequired        = errors.New("email and password are required")
	ErrOTPFieldsRequired          = errors.New("email and otp are required")
	ErrEmailRequired              = errors.New("email is required")
	ErrInvalidRole                = errors.New("invalid role")
	ErrInvalidChannel             = errors.New("channel must be email or phone")
	ErrEmailTaken                 = errors.New("email already registered")
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrEmailNotVerified           = errors.New("email not verified")
	ErrPasswordTooShort           = errors.New("password too short")
	ErrUserNotFound               = errors.New("user not found")
	ErrInvalidOTP                 = errors.New("invalid or expired otp")
	ErrResetTokenExpired          = errors.New("reset token is expired or no longer valid")
	ErrFailedToHashPassword       = errors.New("failed to hash password")
	ErrNotificationFailed         = errors.New("failed to send notification")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	notifier notify.Notifier
	cfg      config.AuthConfig
	resetURL string
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, notifier notify.Notifier, cfg *config.Config, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg.Auth,
		resetURL: cfg.App.ResetURL,
		logger:   logger,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     models.Role
	Profile  *models.Profile
}

// Register creates an unverified user, sends both verification codes and
// returns the user with an access token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || email == "" || input.Password == "" || phone == "" {
		return nil, "", ErrRegistrationFieldsRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, "", ErrInvalidRole
	}
	if err := input.Profile.Validate(role); err != nil {
		return nil, "", err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ErrFailedToHashPassword
	}

	emailOTP, err := utils.GenerateOTP(constants.OTPLength)
	if err != nil {
		return nil, "", err
	}
	phoneOTP, err := utils.GenerateOTP(constants.OTPLength)
	if err != nil {
		return nil, "", err
	}
	expiry := s.now().Add(s.cfg.OTPTTL)
	phoneExpiry := expiry

	user := &models.User{
		Name:           name,
		Email:          email,
		PasswordHash:   string(hashedPassword),
		Phone:          phone,
		Role:           role,
		Profile:        input.Profile,
		OTP:            &emailOTP,
		OTPExpiry:      &expiry,
		PhoneOTP:       &phoneOTP,
		PhoneOTPExpiry: &phoneExpiry,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent registration may have won the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	s.sendBestEffort(ctx, notify.Message{
		Kind:      notify.KindEmailVerification,
		Channel:   notify.ChannelEmail,
		To:        user.Email,
		Name:      user.Name,
		Code:      emailOTP,
		ExpiresIn: s.cfg.OTPTTL.String(),
	})
	s.sendBestEffort(ctx, notify.Message{
		Kind:      notify.KindPhoneOTP,
		Channel:   notify.ChannelPhone,
		To:        user.Phone,
		Name:      user.Name,
		Code:      phoneOTP,
		ExpiresIn: s.cfg.OTPTTL.String(),
	})

	token, err := s.tokens.Issue(user.ID, user.Role, constants.TokenPurposeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *AuthService) sendBestEffort(ctx context.Context, msg notify.Message) {
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to send notification",
			slog.String("kind", string(msg.Kind)),
			slog.String("error", err.Error()),
		)
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the user with an access token.
// Verification is checked before the password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, "", ErrCredentialsRequired
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsEmailVerified {
		return nil, "", ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role, constants.TokenPurposeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// VerifyOTPInput identifies the code being verified. Channel defaults to email.
type VerifyOTPInput struct {
	Email   string
	OTP     string
	Channel notify.Channel
}

// VerifyOTP consumes a one-time code and marks its channel verified.
func (s *AuthService) VerifyOTP(ctx context.Context, input VerifyOTPInput) error {
	email := normalizeEmail(input.Email)
	code := strings.TrimSpace(input.OTP)
	if email == "" || code == "" {
		return ErrOTPFieldsRequired
	}

	channel := input.Channel
	if channel == "" {
		channel = notify.ChannelEmail
	}
	if channel != notify.ChannelEmail && channel != notify.ChannelPhone {
		return ErrInvalidChannel
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	stored, expiry := user.OTP, user.OTPExpiry
	if channel == notify.ChannelPhone {
		stored, expiry = user.PhoneOTP, user.PhoneOTPExpiry
	}
	if stored == nil || *stored != code || expiry == nil || !expiry.After(s.now()) {
		return ErrInvalidOTP
	}

	if channel == notify.ChannelPhone {
		user.PhoneOTP = nil
		user.PhoneOTPExpiry = nil
		user.IsPhoneVerified = true
	} else {
		user.OTP = nil
		user.OTPExpiry = nil
		user.IsEmailVerified = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// ForgotPassword stores a reset token for the user and sends the reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role, constants.TokenPurposeReset, s.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}
	expiry := s.now().Add(s.cfg.ResetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	link := s.resetURL + "?token=" + url.QueryEscape(token)
	if err := s.notifier.Notify(ctx, notify.Message{
		Kind:      notify.KindPasswordReset,
		Channel:   notify.ChannelEmail,
		To:        user.Email,
		Name:      user.Name,
		Link:      link,
		ExpiresIn: s.cfg.ResetTokenTTL.String(),
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return nil
}

// ResetPasswordInput carries a reset token and the replacement password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResetPassword replaces the password of the user the reset token was issued
// to. The token must still be the one stored for the user and unexpired.
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	claims, err := s.tokens.Verify(input.Token, constants.TokenPurposeReset)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenExpired
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.ResetToken == nil || *user.ResetToken != input.Token ||
		user.ResetTokenExpiry == nil || !user.ResetTokenExpiry.After(s.now()) {
		return ErrResetTokenExpired
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetToken = nil
	user.ResetTokenExpiry = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ListUsers returns every user, newest first.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
