package models

import (
	"strings"
	"time"
)

type ProjectStatus string

const (
	StatusPending    ProjectStatus = "Pending"
	StatusInProgress ProjectStatus = "InProgress"
	StatusDelayed    ProjectStatus = "Delayed"
	StatusCompleted  ProjectStatus = "Completed"
)

// Statuses lists every status in dashboard order.
var Statuses = []ProjectStatus{StatusPending, StatusInProgress, StatusDelayed, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDelayed, StatusCompleted:
		return true
	}
	return false
}

// NormalizeStatus maps a case-insensitive alias (e.g. "inprogress") to its
// canonical status. Unknown values are passed through unchanged.
func NormalizeStatus(raw string) ProjectStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending
	case "inprogress":
		return StatusInProgress
	case "delayed":
		return StatusDelayed
	case "completed":
		return StatusCompleted
	}
	return ProjectStatus(raw)
}

type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	ProjectCode string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"projectCode"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	CreatedByID uint64        `gorm:"not null" json:"createdBy"`
	StartDate   *time.Time    `json:"startDate"`
	EndDate     *time.Time    `json:"endDate"`
	DueDate     *time.Time    `json:"dueDate"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Relations
	CreatedBy User            `gorm:"foreignKey:CreatedByID" json:"-"`
	Members   []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks     []Task          `gorm:"foreignKey:ProjectID" json:"-"`
}

// Owner returns the owning membership, if any.
func (p *Project) Owner() (ProjectMember, bool) {
	for _, m := range p.Members {
		if m.Role == ProjectRoleOwner {
			return m, true
		}
	}
	return ProjectMember{}, false
}

// IsOwner reports whether userID holds the owner role.
func (p *Project) IsOwner(userID uint64) bool {
	owner, ok := p.Owner()
	return ok && owner.UserID == userID
}

// IsMember reports whether userID is any member of the project.
func (p *Project) IsMember(userID uint64) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
