package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func TestTaskStatus(t *testing.T) {
	today := date(2024, time.March, 15)
	completedAt := date(2024, time.March, 1)

	tests := map[string]struct {
		dueDate     time.Time
		completedAt *time.Time
		expStatus   TaskStatus
	}{
		"Due yesterday and open is overdue": {
			dueDate:   date(2024, time.March, 14),
			expStatus: StatusOverdue,
		},
		"Due exactly today is due": {
			dueDate:   date(2024, time.March, 15),
			expStatus: StatusDue,
		},
		"Due tomorrow is pending": {
			dueDate:   date(2024, time.March, 16),
			expStatus: StatusPending,
		},
		"Completed wins over overdue": {
			dueDate:     date(2024, time.January, 1),
			completedAt: &completedAt,
			expStatus:   StatusCompleted,
		},
		"Completed wins over a future due date": {
			dueDate:     date(2024, time.December, 25),
			completedAt: &completedAt,
			expStatus:   StatusCompleted,
		},
		"Due late in the evening still counts as that day": {
			dueDate:   time.Date(2024, time.March, 15, 23, 59, 0, 0, time.Local),
			expStatus: StatusDue,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			task := FollowUpTask{DueDate: test.dueDate, CompletedAt: test.completedAt}

			got := task.Status(today)

			assert.Equal(t, test.expStatus, got)
			// Deterministic: same inputs, same answer
			assert.Equal(t, got, task.Status(today))
		})
	}
}

func TestTaskComplete(t *testing.T) {
	now := date(2024, time.March, 15)

	t.Run("Call task without notes is rejected", func(t *testing.T) {
		task := FollowUpTask{ActionType: ActionCall, DueDate: now}

		err := task.Complete("", now)

		require.Error(t, err)
		assert.IsType(t, &ValidationError{}, err)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("Call task with whitespace notes is rejected", func(t *testing.T) {
		task := FollowUpTask{ActionType: ActionCall, DueDate: now}

		err := task.Complete("   ", now)

		require.Error(t, err)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("Call task with notes completes", func(t *testing.T) {
		task := FollowUpTask{ActionType: ActionCall, DueDate: now}

		err := task.Complete("left voicemail", now)

		require.NoError(t, err)
		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, now, *task.CompletedAt)
		assert.Equal(t, "left voicemail", task.Notes)
	})

	t.Run("Non-call task completes without notes", func(t *testing.T) {
		task := FollowUpTask{ActionType: ActionText, DueDate: now}

		err := task.Complete("", now)

		require.NoError(t, err)
		require.NotNil(t, task.CompletedAt)
	})

	t.Run("Second completion is a no-op", func(t *testing.T) {
		task := FollowUpTask{ActionType: ActionEmail, DueDate: now}
		require.NoError(t, task.Complete("first", now))
		first := *task.CompletedAt

		later := now.AddDate(0, 0, 3)
		err := task.Complete("second", later)

		require.NoError(t, err)
		assert.Equal(t, first, *task.CompletedAt)
		assert.Equal(t, "first", task.Notes)
	})
}

func TestBuildTasks(t *testing.T) {
	template := &FollowUpTemplate{
		Name: "Onboarding",
		Steps: []TemplateStep{
			{Model: gormModel(11), DayNumber: 0, ActionType: ActionCall, Title: "Welcome call"},
			{Model: gormModel(12), DayNumber: 3, ActionType: ActionText, Title: "Check-in text"},
			{Model: gormModel(13), DayNumber: 7, ActionType: ActionEmail, Title: "One-week email"},
		},
	}
	start := date(2024, time.January, 10)

	tasks, err := BuildTasks(template, start)

	require.NoError(t, err)
	require.Len(t, tasks, len(template.Steps))
	assert.Equal(t, date(2024, time.January, 10), tasks[0].DueDate)
	assert.Equal(t, date(2024, time.January, 13), tasks[1].DueDate)
	assert.Equal(t, date(2024, time.January, 17), tasks[2].DueDate)

	// Step content is copied onto each task
	assert.Equal(t, uint(11), tasks[0].StepID)
	assert.Equal(t, ActionCall, tasks[0].ActionType)
	assert.Equal(t, "Check-in text", tasks[1].Title)
	assert.Equal(t, 7, tasks[2].DayNumber)
}

func TestBuildTasksEmptyTemplate(t *testing.T) {
	template := &FollowUpTemplate{Name: "Empty"}

	tasks, err := BuildTasks(template, date(2024, time.January, 10))

	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
	assert.Nil(t, tasks)
}

func TestBuildTasksCrossesMonthBoundary(t *testing.T) {
	template := &FollowUpTemplate{
		Name:  "Long tail",
		Steps: []TemplateStep{{DayNumber: 30, ActionType: ActionCall, Title: "30-day call"}},
	}

	tasks, err := BuildTasks(template, date(2024, time.January, 20))

	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 19), tasks[0].DueDate)
}

func TestActiveTaskCount(t *testing.T) {
	done := date(2024, time.March, 1)
	tasks := []FollowUpTask{
		{DueDate: date(2024, time.March, 10)},
		{DueDate: date(2024, time.March, 11)},
		{DueDate: date(2024, time.February, 1)},
		{DueDate: date(2024, time.February, 1), CompletedAt: &done},
	}

	// 2 pending, 1 overdue, 1 completed: the completed one stays put
	assert.Equal(t, 3, ActiveTaskCount(tasks))
}
