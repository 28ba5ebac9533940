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

type TaskController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTaskController(db *gorm.DB, logger *log.Logger) *TaskController {
	return &TaskController{
		DB:     db,
		Logger: logger,
	}
}

// TaskView is a task plus its derived status; the status never comes from a
// stored column.
type TaskView struct {
	models.FollowUpTask
	Status models.TaskStatus `json:"status"`
}

func NewTaskView(task models.FollowUpTask, today time.Time) TaskView {
	return TaskView{FollowUpTask: task, Status: task.Status(today)}
}

// CompleteTask transitions a task to its terminal completed state. Call
// tasks require notes. A second completion of the same task succeeds
// without moving completed_at.
func (tc *TaskController) CompleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	taskID := utils.ParseUint(c.Params("id"))

	var input struct {
		Notes string `json:"notes" validate:"omitempty,max=4000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var task models.FollowUpTask
	if err := tc.DB.
		Joins("JOIN sequence_instances ON sequence_instances.id = follow_up_tasks.instance_id").
		Where("follow_up_tasks.id = ? AND sequence_instances.agency_id = ?", taskID, user.AgencyID).
		First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.RespondError(c, models.NewNotFoundError("task", taskID))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load task", err)
	}

	// Idempotent: a double-submitted completion is a success, not an error
	if task.CompletedAt != nil {
		return c.JSON(utils.SuccessResponse(NewTaskView(task, time.Now())))
	}

	if err := task.Complete(input.Notes, time.Now()); err != nil {
		return utils.RespondError(c, err)
	}

	// Conditional single-row write: if another request completed the task
	// between our read and this update, leave its completed_at alone.
	result := tc.DB.Model(&models.FollowUpTask{}).
		Where("id = ? AND completed_at IS NULL", task.ID).
		Updates(map[string]interface{}{
			"completed_at": task.CompletedAt,
			"notes":        task.Notes,
		})
	if result.Error != nil {
		tc.Logger.Printf("Failed to complete task %d: %v", task.ID, result.Error)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to complete task", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race to another completion; reload so the response
		// reflects the winning write.
		if err := tc.DB.First(&task, task.ID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reload task", err)
		}
	}

	return c.JSON(utils.SuccessResponse(NewTaskView(task, time.Now())))
}

// ListTasks returns the agency's tasks with their instance join for display
// fields. Status filters apply to the derived status.
func (tc *TaskController) ListTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit > 200 {
		limit = 200
	}
	offset := (page - 1) * limit

	query := tc.DB.
		Joins("JOIN sequence_instances ON sequence_instances.id = follow_up_tasks.instance_id").
		Where("sequence_instances.agency_id = ?", user.AgencyID).
		Preload("Instance")

	if instanceID := c.Query("instance_id"); instanceID != "" {
		query = query.Where("follow_up_tasks.instance_id = ?", utils.ParseUint(instanceID))
	}
	if staffID := c.Query("staff_id"); staffID != "" {
		query = query.Where("sequence_instances.staff_id = ?", utils.ParseUint(staffID))
	}
	if agentUserID := c.Query("agent_user_id"); agentUserID != "" {
		query = query.Where("sequence_instances.agent_user_id = ?", utils.ParseUint(agentUserID))
	}

	// Derived statuses map cleanly onto the date column, so the filter runs
	// in SQL and pagination applies to the filtered set.
	now := time.Now()
	today := startOfDay(now)
	statusFilter := models.TaskStatus(c.Query("status"))
	switch statusFilter {
	case models.StatusCompleted:
		query = query.Where("follow_up_tasks.completed_at IS NOT NULL")
	case models.StatusOverdue:
		query = query.Where("follow_up_tasks.completed_at IS NULL AND follow_up_tasks.due_date < ?", today)
	case models.StatusDue:
		query = query.Where("follow_up_tasks.completed_at IS NULL AND follow_up_tasks.due_date = ?", today)
	case models.StatusPending:
		query = query.Where("follow_up_tasks.completed_at IS NULL AND follow_up_tasks.due_date > ?", today)
	}

	var tasks []models.FollowUpTask
	if err := query.Order("follow_up_tasks.due_date ASC, follow_up_tasks.id ASC").
		Offset(offset).Limit(limit).
		Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, NewTaskView(tasks[i], now))
	}

	return c.JSON(utils.SuccessResponse(views))
}

// GetTaskBoard returns the prioritized per-customer grouping plus the
// collapsed completed-today bucket.
func (tc *TaskController) GetTaskBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)

	query := tc.DB.
		Joins("JOIN sequence_instances ON sequence_instances.id = follow_up_tasks.instance_id").
		Where("sequence_instances.agency_id = ?", user.AgencyID).
		Preload("Instance")

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

	board := utils.BuildTaskBoard(tasks, time.Now())
	return c.JSON(utils.SuccessResponse(board))
}

// startOfDay truncates to local midnight, the value date columns hold.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
