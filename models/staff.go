package models

import (
	"strings"

	"gorm.io/gorm"
)

// Agency is the tenant boundary; every template, instance, staff member and
// user belongs to exactly one agency.
type Agency struct {
	gorm.Model
	Name  string `gorm:"not null" json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// StaffMember is an agency employee without a platform login. The other
// half of the assignee union: tasks can be worked by staff who never sign
// in themselves.
type StaffMember struct {
	gorm.Model
	AgencyID uint `gorm:"not null;index" json:"agency_id"`

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"` // csr, producer, office_manager, etc.
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

func (s *StaffMember) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
