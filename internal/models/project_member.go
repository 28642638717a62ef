package models

import "time"

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleMember ProjectRole = "member"
)

// Valid reports whether r is a known membership role.
func (r ProjectRole) Valid() bool {
	return r == ProjectRoleOwner || r == ProjectRoleMember
}

type ProjectMember struct {
	ID        uint64      `gorm:"primarykey" json:"-"`
	ProjectID uint64      `gorm:"not null;uniqueIndex:idx_project_members_project_user" json:"-"`
	UserID    uint64      `gorm:"not null;uniqueIndex:idx_project_members_project_user;index" json:"userId"`
	Role      ProjectRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt  time.Time   `json:"joinedAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
