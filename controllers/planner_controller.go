package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"agencydesk/models"
	"agencydesk/utils"
)

type PlannerController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewPlannerController(db *gorm.DB, logger *log.Logger) *PlannerController {
	return &PlannerController{
		DB:     db,
		Logger: logger,
	}
}

// GetWeekOutlook returns the Monday-Friday outlook: per-day open task
// counts in the requested week window. Without an offset the window is the
// current week, or next week when today is a weekend. The offset is pure
// view state; nothing here is persisted.
func (pc *PlannerController) GetWeekOutlook(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	now := time.Now()

	defaultOffset := utils.DefaultWeekOffset(now)
	offset := defaultOffset
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid week offset", err)
		}
		offset = parsed
	}

	week := utils.BusinessWeek(now, offset)

	query := pc.DB.
		Joins("JOIN sequence_instances ON sequence_instances.id = follow_up_tasks.instance_id").
		Where("sequence_instances.agency_id = ?", user.AgencyID).
		Where("follow_up_tasks.completed_at IS NULL").
		Where("follow_up_tasks.due_date BETWEEN ? AND ?", week[0], week[4])

	if staffID := c.Query("staff_id"); staffID != "" {
		query = query.Where("sequence_instances.staff_id = ?", utils.ParseUint(staffID))
	}
	if agentUserID := c.Query("agent_user_id"); agentUserID != "" {
		query = query.Where("sequence_instances.agent_user_id = ?", utils.ParseUint(agentUserID))
	}

	var tasks []models.FollowUpTask
	if err := query.Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	days := utils.BuildWeekOutlook(tasks, now, offset)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"offset":         offset,
		"default_offset": defaultOffset,
		"days":           days,
	}))
}
