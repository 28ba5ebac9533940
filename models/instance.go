package models

import (
	"time"

	"gorm.io/gorm"
)

// AssigneeRef identifies who owns an instance and its tasks: either a staff
// member or a platform (agent) user, never both. The two nullable columns on
// SequenceInstance are only ever written through this type so the
// exactly-one rule holds everywhere.
type AssigneeRef struct {
	StaffID     *uint `json:"staff_id,omitempty"`
	AgentUserID *uint `json:"agent_user_id,omitempty"`
}

// Validate checks that exactly one variant is populated.
func (a AssigneeRef) Validate() error {
	if a.StaffID != nil && a.AgentUserID != nil {
		return NewValidationError("assignee cannot be both a staff member and a user")
	}
	if a.StaffID == nil && a.AgentUserID == nil {
		return NewValidationError("an assignee is required")
	}
	return nil
}

func (a AssigneeRef) Equals(b AssigneeRef) bool {
	return uintPtrEq(a.StaffID, b.StaffID) && uintPtrEq(a.AgentUserID, b.AgentUserID)
}

func (a AssigneeRef) IsZero() bool {
	return a.StaffID == nil && a.AgentUserID == nil
}

func uintPtrEq(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SequenceInstance is one application of a FollowUpTemplate to a specific
// customer, with a concrete start date and assignee. ContactID and SaleID
// are the optional subject link; at most one may be set, and an instance
// carries its own customer display fields so it can stand alone without
// either.
type SequenceInstance struct {
	gorm.Model
	AgencyID   uint `gorm:"not null;index" json:"agency_id"`
	TemplateID uint `gorm:"not null;index" json:"template_id"`

	ContactID *uint `gorm:"index" json:"contact_id,omitempty"`
	SaleID    *uint `gorm:"index" json:"sale_id,omitempty"`

	CustomerName  string `gorm:"not null" json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	StaffID     *uint `gorm:"index" json:"staff_id,omitempty"`
	AgentUserID *uint `gorm:"index" json:"agent_user_id,omitempty"`

	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`

	// Denormalized display counters refreshed by the rollup worker. The
	// per-task derived status stays authoritative; these are hints only.
	OpenTaskCount    int `gorm:"default:0" json:"open_task_count"`
	OverdueTaskCount int `gorm:"default:0" json:"overdue_task_count"`

	// Relations
	Tasks    []FollowUpTask   `gorm:"foreignKey:InstanceID" json:"tasks,omitempty"`
	Template FollowUpTemplate `json:"-"`
}

func (si *SequenceInstance) Assignee() AssigneeRef {
	return AssigneeRef{StaffID: si.StaffID, AgentUserID: si.AgentUserID}
}

func (si *SequenceInstance) SetAssignee(a AssigneeRef) {
	si.StaffID = a.StaffID
	si.AgentUserID = a.AgentUserID
}

// ValidateSubject enforces that at most one of contact/sale is linked.
func (si *SequenceInstance) ValidateSubject() error {
	if si.ContactID != nil && si.SaleID != nil {
		return NewValidationError("an instance may reference a contact or a sale, not both")
	}
	return nil
}
