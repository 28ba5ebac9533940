package utils

import (
	"time"

	"agencydesk/models"
)

// Day classifications for the business-week outlook.
type PlannerDayKind string

const (
	DayMissed PlannerDayKind = "missed"           // before today, open tasks left behind
	DayToday  PlannerDayKind = "today-with-tasks" // today, work remaining
	DayClear  PlannerDayKind = "past-done"        // nothing owed on a day that has passed
	DayFuture PlannerDayKind = "future"
)

// PlannerDay is one cell of the Monday-Friday outlook widget.
type PlannerDay struct {
	Date    string         `json:"date"` // YYYY-MM-DD
	Weekday string         `json:"weekday"`
	Count   int            `json:"count"`
	Kind    PlannerDayKind `json:"kind"`
}

// DefaultWeekOffset returns the default planner window offset: the current
// week, unless today is a weekend, in which case next week.
func DefaultWeekOffset(today time.Time) int {
	switch today.Weekday() {
	case time.Saturday, time.Sunday:
		return 1
	default:
		return 0
	}
}

// BusinessWeek returns the five weekdays (Monday through Friday) of the
// week `offset` weeks away from today's week. Days are truncated to local
// midnight: the values are compared against date columns, and a lower
// bound carrying today's wall-clock time would exclude everything due on
// the window's Monday.
func BusinessWeek(today time.Time, offset int) [5]time.Time {
	// Monday of today's week; Go weekdays start at Sunday == 0.
	daysSinceMonday := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -daysSinceMonday+7*offset)
	year, month, day := monday.Date()
	monday = time.Date(year, month, day, 0, 0, 0, 0, today.Location())

	var week [5]time.Time
	for i := range week {
		week[i] = monday.AddDate(0, 0, i)
	}
	return week
}

// BuildWeekOutlook buckets open tasks into the requested business week and
// classifies each day relative to today. Completed tasks never count.
func BuildWeekOutlook(tasks []models.FollowUpTask, today time.Time, offset int) []PlannerDay {
	week := BusinessWeek(today, offset)
	todayStr := models.DateOnly(today)

	counts := make(map[string]int)
	for _, task := range tasks {
		if !task.IsOpen() {
			continue
		}
		counts[models.DateOnly(task.DueDate)]++
	}

	days := make([]PlannerDay, 0, len(week))
	for _, day := range week {
		dayStr := models.DateOnly(day)
		count := counts[dayStr]

		var kind PlannerDayKind
		switch {
		case dayStr > todayStr:
			kind = DayFuture
		case dayStr == todayStr && count > 0:
			kind = DayToday
		case dayStr < todayStr && count > 0:
			kind = DayMissed
		default:
			kind = DayClear
		}

		days = append(days, PlannerDay{
			Date:    dayStr,
			Weekday: day.Weekday().String(),
			Count:   count,
			Kind:    kind,
		})
	}
	return days
}
