package controller

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencydesk/models"
	"agencydesk/utils"
)

func TestApplySequence(t *testing.T) {
	db := openTestDB(t)
	_, user, staff := seedAgency(t, db)
	template := seedTemplate(t, db, user.AgencyID, 0, 3, 7)

	sc := NewSequenceController(db, testLogger())
	app := newTestApp(user, func(api fiber.Router) {
		api.Post("/sequences/apply", sc.ApplySequence)
	})

	t.Run("Creates the instance and one task per step", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/sequences/apply", fiber.Map{
			"template_id":   template.ID,
			"start_date":    "2024-01-10",
			"staff_id":      staff.ID,
			"customer_name": "Pat Winters",
		}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var instance models.SequenceInstance
		require.NoError(t, db.Where("customer_name = ?", "Pat Winters").First(&instance).Error)
		require.NotNil(t, instance.StaffID)
		assert.Equal(t, staff.ID, *instance.StaffID)

		var tasks []models.FollowUpTask
		require.NoError(t, db.Where("instance_id = ?", instance.ID).Order("day_number ASC").Find(&tasks).Error)
		require.Len(t, tasks, 3)
		assert.Equal(t, "2024-01-10", models.DateOnly(tasks[0].DueDate))
		assert.Equal(t, "2024-01-13", models.DateOnly(tasks[1].DueDate))
		assert.Equal(t, "2024-01-17", models.DateOnly(tasks[2].DueDate))
	})

	t.Run("Unknown staff member creates nothing", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/sequences/apply", fiber.Map{
			"template_id":   template.ID,
			"start_date":    "2024-01-10",
			"staff_id":      uint(9999),
			"customer_name": "Ghost Owner",
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var count int64
		require.NoError(t, db.Model(&models.SequenceInstance{}).
			Where("customer_name = ?", "Ghost Owner").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("Staff from another agency is invisible", func(t *testing.T) {
		other := &models.Agency{Name: "Rival Brokerage"}
		require.NoError(t, db.Create(other).Error)
		outsider := &models.StaffMember{AgencyID: other.ID, FirstName: "Lee", IsActive: true}
		require.NoError(t, db.Create(outsider).Error)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/sequences/apply", fiber.Map{
			"template_id":   template.ID,
			"start_date":    "2024-01-10",
			"staff_id":      outsider.ID,
			"customer_name": "Cross Tenant",
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("Both assignee halves are rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/sequences/apply", fiber.Map{
			"template_id":   template.ID,
			"start_date":    "2024-01-10",
			"staff_id":      staff.ID,
			"agent_user_id": user.ID,
			"customer_name": "Split Owner",
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestReassignSequence(t *testing.T) {
	db := openTestDB(t)
	_, user, staff := seedAgency(t, db)

	successor := &models.StaffMember{AgencyID: user.AgencyID, FirstName: "Riley", LastName: "Quinn", IsActive: true}
	require.NoError(t, db.Create(successor).Error)

	instance := &models.SequenceInstance{
		AgencyID:     user.AgencyID,
		TemplateID:   1,
		CustomerName: "Pat Winters",
		StaffID:      utils.Pointer(staff.ID),
		StartDate:    time.Now(),
	}
	require.NoError(t, db.Create(instance).Error)

	doneAt := time.Now()
	tasks := []models.FollowUpTask{
		{InstanceID: instance.ID, StepID: 1, Title: "Welcome call", ActionType: models.ActionCall, DueDate: time.Now().AddDate(0, 0, -2)},
		{InstanceID: instance.ID, StepID: 2, Title: "Policy review", ActionType: models.ActionText, DueDate: time.Now().AddDate(0, 0, 3)},
		{InstanceID: instance.ID, StepID: 3, Title: "Docs check", ActionType: models.ActionText, DueDate: time.Now().AddDate(0, 0, -1), CompletedAt: &doneAt},
	}
	require.NoError(t, db.Create(&tasks).Error)

	sc := NewSequenceController(db, testLogger())
	app := newTestApp(user, func(api fiber.Router) {
		api.Post("/sequences/:id/reassign", sc.ReassignSequence)
	})

	t.Run("Moves open tasks and reports the count", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/sequences/1/reassign", fiber.Map{
			"staff_id": successor.ID,
		}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Data struct {
				MovedCount  int    `json:"moved_count"`
				DisplayName string `json:"new_assignee_display_name"`
			} `json:"data"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 2, body.Data.MovedCount)
		assert.Equal(t, "Riley Quinn", body.Data.DisplayName)

		var reloaded models.SequenceInstance
		require.NoError(t, db.First(&reloaded, instance.ID).Error)
		require.NotNil(t, reloaded.StaffID)
		assert.Equal(t, successor.ID, *reloaded.StaffID)
	})

	t.Run("Reassigning to the current assignee fails", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/sequences/1/reassign", fiber.Map{
			"staff_id": successor.ID,
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
