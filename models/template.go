package models

import "gorm.io/gorm"

// TargetType classifies which pipeline a follow-up template is meant for
type TargetType string

const (
	TargetOnboarding    TargetType = "onboarding"
	TargetLeadNurturing TargetType = "lead_nurturing"
	TargetRequote       TargetType = "requote"
	TargetRetention     TargetType = "retention"
	TargetOther         TargetType = "other"
)

// ActionType is the interaction channel of a step/task. It drives the
// completion rules (call tasks require notes).
type ActionType string

const (
	ActionCall  ActionType = "call"
	ActionText  ActionType = "text"
	ActionEmail ActionType = "email"
	ActionOther ActionType = "other"
)

// FollowUpTemplate is a reusable, ordered sequence of follow-up steps,
// independent of any specific customer
type FollowUpTemplate struct {
	gorm.Model
	AgencyID uint `gorm:"not null;index" json:"agency_id"`

	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	TargetType  TargetType `gorm:"not null;default:'onboarding'" json:"target_type"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	// Relations
	Steps []TemplateStep `gorm:"foreignKey:TemplateID" json:"steps,omitempty"`
}

// TemplateStep is one entry in a template. DayNumber is an offset in days
// from the instance start date, not an absolute date. Steps may share a day
// number; each step still produces exactly one task.
type TemplateStep struct {
	gorm.Model
	TemplateID uint `gorm:"not null;index" json:"template_id"`

	DayNumber      int        `gorm:"not null" json:"day_number"`
	ActionType     ActionType `gorm:"not null;default:'other'" json:"action_type"`
	Title          string     `gorm:"not null" json:"title"`
	Description    string     `json:"description"`
	ScriptTemplate string     `gorm:"type:text" json:"script_template"`
}
