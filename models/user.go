package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// AgentUser is a platform login: an agency principal or producer who signs
// into the dashboard. One half of the assignee union.
type AgentUser struct {
	gorm.Model
	AgencyID uint `gorm:"not null;index" json:"agency_id"`

	Email        string `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`

	IsActive     bool `gorm:"default:true" json:"is_active"`
	TokenVersion int  `gorm:"default:0" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u *AgentUser) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
