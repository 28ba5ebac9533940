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

func TestListTasksStatusFilter(t *testing.T) {
	db := openTestDB(t)
	_, user, staff := seedAgency(t, db)

	instance := &models.SequenceInstance{
		AgencyID:     user.AgencyID,
		TemplateID:   1,
		CustomerName: "Pat Winters",
		StaffID:      utils.Pointer(staff.ID),
		StartDate:    time.Now(),
	}
	require.NoError(t, db.Create(instance).Error)

	today := startOfDay(time.Now())
	doneAt := time.Now()
	tasks := []models.FollowUpTask{
		{InstanceID: instance.ID, StepID: 1, Title: "Oldest call", ActionType: models.ActionCall, DueDate: today.AddDate(0, 0, -3)},
		{InstanceID: instance.ID, StepID: 2, Title: "Older text", ActionType: models.ActionText, DueDate: today.AddDate(0, 0, -2)},
		{InstanceID: instance.ID, StepID: 3, Title: "Missed check-in", ActionType: models.ActionText, DueDate: today.AddDate(0, 0, -1)},
		{InstanceID: instance.ID, StepID: 4, Title: "Today's call", ActionType: models.ActionCall, DueDate: today},
		{InstanceID: instance.ID, StepID: 5, Title: "Upcoming text", ActionType: models.ActionText, DueDate: today.AddDate(0, 0, 2)},
		{InstanceID: instance.ID, StepID: 6, Title: "Far review", ActionType: models.ActionOther, DueDate: today.AddDate(0, 0, 9)},
		{InstanceID: instance.ID, StepID: 7, Title: "Done already", ActionType: models.ActionText, DueDate: today.AddDate(0, 0, -2), CompletedAt: &doneAt},
	}
	require.NoError(t, db.Create(&tasks).Error)

	tc := NewTaskController(db, testLogger())
	app := newTestApp(user, func(api fiber.Router) {
		api.Get("/tasks", tc.ListTasks)
	})

	listTasks := func(t *testing.T, target string) []TaskView {
		t.Helper()
		resp, err := app.Test(jsonRequest(fiber.MethodGet, target, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Data []TaskView `json:"data"`
		}
		decodeBody(t, resp, &body)
		return body.Data
	}

	t.Run("Overdue filter fills pages to the limit", func(t *testing.T) {
		// Three overdue tasks with limit 2: a full first page, then one.
		// The completed task due in the past must not occupy a slot.
		page1 := listTasks(t, "/api/v1/tasks?status=overdue&limit=2&page=1")
		require.Len(t, page1, 2)
		for _, view := range page1 {
			assert.Equal(t, models.StatusOverdue, view.Status)
		}

		page2 := listTasks(t, "/api/v1/tasks?status=overdue&limit=2&page=2")
		require.Len(t, page2, 1)
		assert.Equal(t, models.StatusOverdue, page2[0].Status)
		assert.NotEqual(t, page1[0].ID, page2[0].ID)
		assert.NotEqual(t, page1[1].ID, page2[0].ID)
	})

	t.Run("Due filter returns only today's tasks", func(t *testing.T) {
		views := listTasks(t, "/api/v1/tasks?status=due")
		require.Len(t, views, 1)
		assert.Equal(t, "Today's call", views[0].Title)
		assert.Equal(t, models.StatusDue, views[0].Status)
	})

	t.Run("Pending filter returns only future tasks", func(t *testing.T) {
		views := listTasks(t, "/api/v1/tasks?status=pending")
		require.Len(t, views, 2)
		for _, view := range views {
			assert.Equal(t, models.StatusPending, view.Status)
		}
	})

	t.Run("Completed filter ignores due dates", func(t *testing.T) {
		views := listTasks(t, "/api/v1/tasks?status=completed")
		require.Len(t, views, 1)
		assert.Equal(t, "Done already", views[0].Title)
	})

	t.Run("No filter returns everything", func(t *testing.T) {
		views := listTasks(t, "/api/v1/tasks")
		assert.Len(t, views, 7)
	})
}
