package models

import "gorm.io/gorm"

// CreateDefaultTemplates seeds the stock follow-up templates for a new
// agency. Safe to call repeatedly; matches on name within the agency.
func CreateDefaultTemplates(db *gorm.DB, agencyID uint) error {
	defaultTemplates := []FollowUpTemplate{
		{
			AgencyID:    agencyID,
			Name:        "New Customer Onboarding",
			Description: "First-90-days touch plan for every new household",
			TargetType:  TargetOnboarding,
			IsActive:    true,
			Steps: []TemplateStep{
				{DayNumber: 0, ActionType: ActionCall, Title: "Welcome call", ScriptTemplate: "Thank them for their business and confirm coverage start dates."},
				{DayNumber: 3, ActionType: ActionText, Title: "ID cards check-in", ScriptTemplate: "Confirm they received their ID cards and app login."},
				{DayNumber: 14, ActionType: ActionCall, Title: "Two-week review", ScriptTemplate: "Answer billing questions and ask for referrals."},
				{DayNumber: 30, ActionType: ActionEmail, Title: "30-day touch", ScriptTemplate: "Share the claims process one-pager."},
				{DayNumber: 90, ActionType: ActionCall, Title: "90-day review", ScriptTemplate: "Full coverage review; look for cross-sell openings."},
			},
		},
		{
			AgencyID:    agencyID,
			Name:        "Requote Follow-Up",
			Description: "Stay in front of prospects whose quote did not close",
			TargetType:  TargetRequote,
			IsActive:    true,
			Steps: []TemplateStep{
				{DayNumber: 0, ActionType: ActionCall, Title: "Requote delivered", ScriptTemplate: "Walk through the new numbers."},
				{DayNumber: 7, ActionType: ActionText, Title: "One-week nudge", ScriptTemplate: "Any questions on the requote?"},
				{DayNumber: 21, ActionType: ActionEmail, Title: "Final follow-up", ScriptTemplate: "Last touch before the quote expires."},
			},
		},
	}

	for _, tmpl := range defaultTemplates {
		if err := db.FirstOrCreate(&tmpl, "agency_id = ? AND name = ?", agencyID, tmpl.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
