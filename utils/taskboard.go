package utils

import (
	"sort"
	"strings"
	"time"

	"agencydesk/models"
)

// UnknownCustomer labels tasks whose instance record is missing.
const UnknownCustomer = "Unknown Customer"

// TaskGroup is one customer's slice of the task board with per-status
// counts.
type TaskGroup struct {
	CustomerName   string                `json:"customer_name"`
	OverdueCount   int                   `json:"overdue_count"`
	DueCount       int                   `json:"due_count"`
	PendingCount   int                   `json:"pending_count"`
	CompletedCount int                   `json:"completed_count"`
	Tasks          []models.FollowUpTask `json:"tasks"`
}

// TaskBoard is the aggregated dashboard view: prioritized customer groups
// plus the collapsed completed-today bucket.
type TaskBoard struct {
	Groups         []TaskGroup           `json:"groups"`
	CompletedToday []models.FollowUpTask `json:"completed_today"`
}

// BuildTaskBoard groups tasks by customer name, counts statuses per group,
// and orders groups by urgency. Tasks completed on the current calendar day
// go to a separate bucket so "today's work" dashboards do not double-count
// them.
//
// Sort is three-tier: groups with an overdue task first, then groups with a
// due task, then everything else, alphabetical within each tier.
func BuildTaskBoard(tasks []models.FollowUpTask, today time.Time) TaskBoard {
	byCustomer := make(map[string]*TaskGroup)
	order := []string{}
	completedToday := []models.FollowUpTask{}

	for _, task := range tasks {
		if task.CompletedOn(today) {
			completedToday = append(completedToday, task)
			continue
		}

		name := UnknownCustomer
		if task.Instance != nil && task.Instance.CustomerName != "" {
			name = task.Instance.CustomerName
		}

		group, ok := byCustomer[name]
		if !ok {
			group = &TaskGroup{CustomerName: name}
			byCustomer[name] = group
			order = append(order, name)
		}

		switch task.Status(today) {
		case models.StatusOverdue:
			group.OverdueCount++
		case models.StatusDue:
			group.DueCount++
		case models.StatusPending:
			group.PendingCount++
		case models.StatusCompleted:
			group.CompletedCount++
		}
		group.Tasks = append(group.Tasks, task)
	}

	groups := make([]TaskGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byCustomer[name])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		ti, tj := groupTier(groups[i]), groupTier(groups[j])
		if ti != tj {
			return ti < tj
		}
		return strings.ToLower(groups[i].CustomerName) < strings.ToLower(groups[j].CustomerName)
	})

	return TaskBoard{Groups: groups, CompletedToday: completedToday}
}

func groupTier(g TaskGroup) int {
	switch {
	case g.OverdueCount > 0:
		return 0
	case g.DueCount > 0:
		return 1
	default:
		return 2
	}
}
