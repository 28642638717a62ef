package models

import "errors"

var (
	ErrProfileKindMismatch     = errors.New("profile kind does not match user role")
	ErrProfileVariantAmbiguous = errors.New("profile must carry exactly one variant")
	ErrProfileNotSupported     = errors.New("role does not support a profile")
)

// ProfileKind names which variant of Profile is populated.
type ProfileKind string

const (
	ProfileKindStudent  ProfileKind = "student"
	ProfileKindEmployee ProfileKind = "employee"
	ProfileKindCustomer ProfileKind = "customer"
)

type StudentProfile struct {
	School string `json:"school"`
	Grade  string `json:"grade,omitempty"`
}

type EmployeeProfile struct {
	Department string `json:"department"`
	Title      string `json:"title,omitempty"`
}

type CustomerProfile struct {
	Company string `json:"company"`
}

// Profile is a role-specific extension of User. Exactly one variant is set and
// it must match ProfileKindFor(user.Role).
type Profile struct {
	Kind     ProfileKind      `json:"kind"`
	Student  *StudentProfile  `json:"student,omitempty"`
	Employee *EmployeeProfile `json:"employee,omitempty"`
	Customer *CustomerProfile `json:"customer,omitempty"`
}

// ProfileKindFor returns the profile variant a role may carry.
func ProfileKindFor(role Role) (ProfileKind, bool) {
	switch role {
	case RoleStudent:
		return ProfileKindStudent, true
	case RoleEmployee, RoleHR, RoleIntern, RoleManager:
		return ProfileKindEmployee, true
	case RoleCustomer, RoleClient:
		return ProfileKindCustomer, true
	default:
		return "", false
	}
}

// Validate checks the profile against the role of its owner.
func (p *Profile) Validate(role Role) error {
	if p == nil {
		return nil
	}

	want, ok := ProfileKindFor(role)
	if !ok {
		return ErrProfileNotSupported
	}
	if p.Kind != want {
		return ErrProfileKindMismatch
	}

	set := 0
	var matches bool
	if p.Student != nil {
		set++
		matches = p.Kind == ProfileKindStudent
	}
	if p.Employee != nil {
		set++
		matches = p.Kind == ProfileKindEmployee
	}
	if p.Customer != nil {
		set++
		matches = p.Kind == ProfileKindCustomer
	}
	if set != 1 {
		return ErrProfileVariantAmbiguous
	}
	if !matches {
		return ErrProfileKindMismatch
	}
	return nil
}
