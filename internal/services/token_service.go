package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/projecthub/projecthub-api/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the payload of every token the API issues.
type TokenClaims struct {
	UserID  uint64      `json:"id"`
	Role    models.Role `json:"role"`
	Purpose string      `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens scoped to a purpose.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a token for the user that expires after ttl.
func (s *TokenService) Issue(userID uint64, role models.Role, purpose string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		UserID:  userID,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and purpose of a token and returns its
// claims.
func (s *TokenService) Verify(token, purpose string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == 0 || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
