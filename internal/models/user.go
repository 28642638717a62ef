package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleGuest    Role = "guest"
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleClient   Role = "client"
	RoleStudent  Role = "student"
	RoleHR       Role = "hr"
	RoleIntern   Role = "intern"
	RoleManager  Role = "manager"
	RoleOwner    Role = "owner"
	RoleMember   Role = "member"
)

var validRoles = map[Role]struct{}{
	RoleAdmin: {}, RoleUser: {}, RoleGuest: {}, RoleCustomer: {},
	RoleEmployee: {}, RoleClient: {}, RoleStudent: {}, RoleHR: {},
	RoleIntern: {}, RoleManager: {}, RoleOwner: {}, RoleMember: {},
}

// Valid reports whether r is one of the known account roles.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

type User struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	Name             string     `gorm:"type:varchar(255);not null" json:"name"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"type:varchar(255);not null" json:"-"`
	Phone            string     `gorm:"type:varchar(32);not null" json:"phone"`
	Role             Role       `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Profile          *Profile   `gorm:"serializer:json" json:"profile,omitempty"`
	IsEmailVerified  bool       `gorm:"not null;default:false" json:"isEmailVerified"`
	IsPhoneVerified  bool       `gorm:"not null;default:false" json:"isPhoneVerified"`
	OTP              *string    `gorm:"type:varchar(16)" json:"-"`
	OTPExpiry        *time.Time `json:"-"`
	PhoneOTP         *string    `gorm:"type:varchar(16)" json:"-"`
	PhoneOTPExpiry   *time.Time `json:"-"`
	ResetToken       *string    `gorm:"type:text" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
