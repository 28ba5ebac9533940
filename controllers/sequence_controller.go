package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"agencydesk/models"
	"agencydesk/utils"
)

type SequenceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSequenceController(db *gorm.DB, logger *log.Logger) *SequenceController {
	return &SequenceController{
		DB:     db,
		Logger: logger,
	}
}

// ApplySequence instantiates a follow-up template for one customer: one
// instance row plus one task per step, created in a single transaction so a
// failure can never leave an instance with a partial task list.
func (sc *SequenceController) ApplySequence(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)

	var input struct {
		TemplateID    uint   `json:"template_id" validate:"required"`
		StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
		StaffID       *uint  `json:"staff_id"`
		AgentUserID   *uint  `json:"agent_user_id"`
		ContactID     *uint  `json:"contact_id"`
		SaleID        *uint  `json:"sale_id"`
		CustomerName  string `json:"customer_name" validate:"required,max=200"`
		CustomerPhone string `json:"customer_phone" validate:"omitempty,max=30"`
		CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	assignee := models.AssigneeRef{StaffID: input.StaffID, AgentUserID: input.AgentUserID}
	if err := assignee.Validate(); err != nil {
		return utils.RespondError(c, err)
	}
	// The referenced staff member or user must exist inside this agency;
	// otherwise the instance would be owned by nobody.
	if _, err := sc.assigneeDisplayName(user.AgencyID, assignee); err != nil {
		return utils.RespondError(c, err)
	}

	startDate, err := time.ParseInLocation("2006-01-02", input.StartDate, time.Local)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid start date", err)
	}

	var template models.FollowUpTemplate
	if err := sc.DB.Where("id = ? AND agency_id = ?", input.TemplateID, user.AgencyID).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC, id ASC")
		}).
		First(&template).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.RespondError(c, models.NewNotFoundError("template", input.TemplateID))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load template", err)
	}

	tasks, err := models.BuildTasks(&template, startDate)
	if err != nil {
		return utils.RespondError(c, err)
	}

	instance := models.SequenceInstance{
		AgencyID:      user.AgencyID,
		TemplateID:    template.ID,
		ContactID:     input.ContactID,
		SaleID:        input.SaleID,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CustomerEmail: input.CustomerEmail,
		StartDate:     startDate,
	}
	instance.SetAssignee(assignee)

	if err := instance.ValidateSubject(); err != nil {
		return utils.RespondError(c, err)
	}

	// All-or-nothing: the instance and every task commit together
	if err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&instance).Error; err != nil {
			return err
		}
		for i := range tasks {
			tasks[i].InstanceID = instance.ID
		}
		return tx.Create(&tasks).Error
	}); err != nil {
		sc.Logger.Printf("Failed to apply sequence for template %d: %v", template.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to apply sequence", err)
	}

	utils.LogEvent("sequence_applied", map[string]interface{}{
		"instance_id":   instance.ID,
		"template_id":   template.ID,
		"tasks_created": len(tasks),
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"instance_id":   instance.ID,
		"tasks_created": len(tasks),
		"customer_name": instance.CustomerName,
	}))
}

// ReassignSequence moves the instance and its open tasks to a new assignee.
// Completed tasks are reported as untouched: their completion record keeps
// its historical meaning.
func (sc *SequenceController) ReassignSequence(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	instanceID := utils.ParseUint(c.Params("id"))

	var input struct {
		StaffID     *uint `json:"staff_id"`
		AgentUserID *uint `json:"agent_user_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	newAssignee := models.AssigneeRef{StaffID: input.StaffID, AgentUserID: input.AgentUserID}
	if err := newAssignee.Validate(); err != nil {
		return utils.RespondError(c, err)
	}

	var instance models.SequenceInstance
	if err := sc.DB.Where("id = ? AND agency_id = ?", instanceID, user.AgencyID).
		Preload("Tasks").
		First(&instance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.RespondError(c, models.NewNotFoundError("instance", instanceID))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load instance", err)
	}

	if newAssignee.Equals(instance.Assignee()) {
		return utils.RespondError(c, models.NewValidationError("sequence is already assigned to that person"))
	}

	displayName, err := sc.assigneeDisplayName(user.AgencyID, newAssignee)
	if err != nil {
		return utils.RespondError(c, err)
	}

	movedCount := models.ActiveTaskCount(instance.Tasks)

	// Single-row update: the assignee swap and the moved count are one unit
	if err := sc.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.SequenceInstance{}).
			Where("id = ?", instance.ID).
			Updates(map[string]interface{}{
				"staff_id":      newAssignee.StaffID,
				"agent_user_id": newAssignee.AgentUserID,
			}).Error
	}); err != nil {
		sc.Logger.Printf("Failed to reassign instance %d: %v", instance.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reassign sequence", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"moved_count":               movedCount,
		"new_assignee_display_name": displayName,
	}))
}

// GetSequences lists the agency's instances with their rollup counters.
func (sc *SequenceController) GetSequences(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)

	query := sc.DB.Where("agency_id = ?", user.AgencyID)

	if staffID := c.Query("staff_id"); staffID != "" {
		query = query.Where("staff_id = ?", utils.ParseUint(staffID))
	}
	if agentUserID := c.Query("agent_user_id"); agentUserID != "" {
		query = query.Where("agent_user_id = ?", utils.ParseUint(agentUserID))
	}

	var instances []models.SequenceInstance
	if err := query.Order("created_at DESC").Find(&instances).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequences", err)
	}

	return c.JSON(utils.SuccessResponse(instances))
}

// GetSequence returns one instance with its tasks in step order, statuses
// derived as of today.
func (sc *SequenceController) GetSequence(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	instanceID := utils.ParseUint(c.Params("id"))

	var instance models.SequenceInstance
	if err := sc.DB.Where("id = ? AND agency_id = ?", instanceID, user.AgencyID).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC, id ASC")
		}).
		First(&instance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.RespondError(c, models.NewNotFoundError("instance", instanceID))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load instance", err)
	}

	now := time.Now()
	taskViews := make([]TaskView, 0, len(instance.Tasks))
	for i := range instance.Tasks {
		taskViews = append(taskViews, NewTaskView(instance.Tasks[i], now))
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"instance": instance,
		"tasks":    taskViews,
	}))
}

// GetAssigneeCandidates lists who a sequence can be handed to: the agency's
// active staff and users, minus whoever holds it now.
func (sc *SequenceController) GetAssigneeCandidates(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	instanceID := utils.ParseUint(c.Params("id"))

	var instance models.SequenceInstance
	if err := sc.DB.Where("id = ? AND agency_id = ?", instanceID, user.AgencyID).
		First(&instance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.RespondError(c, models.NewNotFoundError("instance", instanceID))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load instance", err)
	}

	staffQuery := sc.DB.Where("agency_id = ? AND is_active = ?", user.AgencyID, true)
	if instance.StaffID != nil {
		staffQuery = staffQuery.Where("id <> ?", *instance.StaffID)
	}
	var staff []models.StaffMember
	if err := staffQuery.Order("first_name ASC").Find(&staff).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch staff", err)
	}

	userQuery := sc.DB.Where("agency_id = ? AND is_active = ?", user.AgencyID, true)
	if instance.AgentUserID != nil {
		userQuery = userQuery.Where("id <> ?", *instance.AgentUserID)
	}
	var users []models.AgentUser
	if err := userQuery.Order("first_name ASC").Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"staff": staff,
		"users": users,
	}))
}

func (sc *SequenceController) assigneeDisplayName(agencyID uint, assignee models.AssigneeRef) (string, error) {
	if assignee.StaffID != nil {
		var staff models.StaffMember
		if err := sc.DB.Where("id = ? AND agency_id = ?", *assignee.StaffID, agencyID).First(&staff).Error; err != nil {
			return "", models.NewNotFoundError("staff member", *assignee.StaffID)
		}
		return staff.DisplayName(), nil
	}
	var agentUser models.AgentUser
	if err := sc.DB.Where("id = ? AND agency_id = ?", *assignee.AgentUserID, agencyID).First(&agentUser).Error; err != nil {
		return "", models.NewNotFoundError("user", *assignee.AgentUserID)
	}
	return agentUser.DisplayName(), nil
}
