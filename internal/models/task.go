package models

import (
	"time"
)

type Task struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	ProjectID   uint64        `gorm:"not null;index" json:"project"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	AssigneeID  *uint64       `gorm:"index" json:"assigneeId"`
	DueDate     *time.Time    `json:"dueDate"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CreatedByID uint64        `gorm:"not null" json:"createdById"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Relations
	Project   Project `gorm:"foreignKey:ProjectID" json:"-"`
	Assignee  *User   `gorm:"foreignKey:AssigneeID" json:"-"`
	CreatedBy User    `gorm:"foreignKey:CreatedByID" json:"-"`
}
