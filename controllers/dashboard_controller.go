package controller

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"agencydesk/models"
	"agencydesk/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type DashboardStats struct {
	OverdueCount    int             `json:"overdue_count"`
	DueTodayCount   int             `json:"due_today_count"`
	PendingCount    int             `json:"pending_count"`
	CompletedToday  int             `json:"completed_today"`
	ActiveSequences int             `json:"active_sequences"`
	WorkloadByOwner []OwnerWorkload `json:"workload_by_owner"`
}

// OwnerWorkload is one assignee's share of the open work.
type OwnerWorkload struct {
	StaffID      *uint  `json:"staff_id,omitempty"`
	AgentUserID  *uint  `json:"agent_user_id,omitempty"`
	DisplayName  string `json:"display_name"`
	OpenCount    int    `json:"open_count"`
	OverdueCount int    `json:"overdue_count"`
}

// GetDashboardStats returns the stat cards: agency-wide counts by derived
// status plus the per-assignee workload split.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	now := time.Now()

	var tasks []models.FollowUpTask
	if err := dc.DB.
		Joins("JOIN sequence_instances ON sequence_instances.id = follow_up_tasks.instance_id").
		Where("sequence_instances.agency_id = ?", user.AgencyID).
		Preload("Instance").
		Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	stats := DashboardStats{}
	workloads := make(map[string]*OwnerWorkload)
	activeInstances := make(map[uint]bool)

	for i := range tasks {
		task := tasks[i]
		switch task.Status(now) {
		case models.StatusOverdue:
			stats.OverdueCount++
		case models.StatusDue:
			stats.DueTodayCount++
		case models.StatusPending:
			stats.PendingCount++
		case models.StatusCompleted:
			if task.CompletedOn(now) {
				stats.CompletedToday++
			}
		}

		if task.Instance == nil || !task.IsOpen() {
			continue
		}
		activeInstances[task.InstanceID] = true

		key, name := dc.ownerKey(user.AgencyID, task.Instance.Assignee())
		wl, ok := workloads[key]
		if !ok {
			wl = &OwnerWorkload{
				StaffID:     task.Instance.StaffID,
				AgentUserID: task.Instance.AgentUserID,
				DisplayName: name,
			}
			workloads[key] = wl
		}
		wl.OpenCount++
		if task.Status(now) == models.StatusOverdue {
			wl.OverdueCount++
		}
	}

	stats.ActiveSequences = len(activeInstances)
	stats.WorkloadByOwner = make([]OwnerWorkload, 0, len(workloads))
	for _, wl := range workloads {
		stats.WorkloadByOwner = append(stats.WorkloadByOwner, *wl)
	}

	return c.JSON(utils.SuccessResponse(stats))
}

// ownerKey resolves a stable map key and display name for an assignee.
func (dc *DashboardController) ownerKey(agencyID uint, assignee models.AssigneeRef) (string, string) {
	if assignee.StaffID != nil {
		name := "Unknown Staff"
		var staff models.StaffMember
		if err := dc.DB.Where("id = ? AND agency_id = ?", *assignee.StaffID, agencyID).First(&staff).Error; err == nil {
			name = staff.DisplayName()
		}
		return fmt.Sprintf("s:%d", *assignee.StaffID), name
	}
	if assignee.AgentUserID != nil {
		name := "Unknown User"
		var agentUser models.AgentUser
		if err := dc.DB.Where("id = ? AND agency_id = ?", *assignee.AgentUserID, agencyID).First(&agentUser).Error; err == nil {
			name = agentUser.DisplayName()
		}
		return fmt.Sprintf("u:%d", *assignee.AgentUserID), name
	}
	return "none", "Unassigned"
}
