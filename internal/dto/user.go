package dto

import (
	"time"

	"github.com/projecthub/projecthub-api/internal/models"
)

// UserDTO represents a user in API responses. Secrets such as the password
// hash, one-time codes and reset tokens are never included.
type UserDTO struct {
	ID              uint64          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Role            models.Role     `json:"role"`
	Profile         *models.Profile `json:"profile,omitempty"`
	IsEmailVerified bool            `json:"isEmailVerified"`
	IsPhoneVerified bool            `json:"isPhoneVerified"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// UserSummaryDTO is the reduced user embedded in other resources
type UserSummaryDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Phone:           user.Phone,
		Role:            user.Role,
		Profile:         user.Profile,
		IsEmailVerified: user.IsEmailVerified,
		IsPhoneVerified: user.IsPhoneVerified,
		CreatedAt:       user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToUserSummaryDTO returns nil when the user was not loaded
func ToUserSummaryDTO(user *models.User) *UserSummaryDTO {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &UserSummaryDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
