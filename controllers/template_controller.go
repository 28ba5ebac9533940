package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"agencydesk/models"
	"agencydesk/utils"
)

type TemplateController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTemplateController(db *gorm.DB, logger *log.Logger) *TemplateController {
	return &TemplateController{
		DB:     db,
		Logger: logger,
	}
}

type stepInput struct {
	DayNumber      int    `json:"day_number" validate:"gte=0"`
	ActionType     string `json:"action_type" validate:"required,oneof=call text email other"`
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
	ScriptTemplate string `json:"script_template" validate:"omitempty,max=8000"`
}

// CreateTemplate creates a follow-up template with its steps in one
// transaction.
func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)

	var input struct {
		Name        string      `json:"name" validate:"required,max=200"`
		Description string      `json:"description" validate:"omitempty,max=2000"`
		TargetType  string      `json:"target_type" validate:"required,oneof=onboarding lead_nurturing requote retention other"`
		Steps       []stepInput `json:"steps" validate:"required,min=1,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	template := models.FollowUpTemplate{
		AgencyID:    user.AgencyID,
		Name:        input.Name,
		Description: input.Description,
		TargetType:  models.TargetType(input.TargetType),
		IsActive:    true,
		Steps:       buildSteps(input.Steps),
	}

	if err := tc.DB.Create(&template).Error; err != nil {
		tc.Logger.Printf("Failed to create template: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create template", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(template))
}

// GetTemplates lists the agency's templates; pass active=true to hide
// retired ones.
func (tc *TemplateController) GetTemplates(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)

	query := tc.DB.Where("agency_id = ?", user.AgencyID)
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if targetType := c.Query("target_type"); targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}

	var templates []models.FollowUpTemplate
	if err := query.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC, id ASC")
		}).
		Order("name ASC").
		Find(&templates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch templates", err)
	}

	return c.JSON(utils.SuccessResponse(templates))
}

func (tc *TemplateController) GetTemplate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	templateID := utils.ParseUint(c.Params("id"))

	var template models.FollowUpTemplate
	if err := tc.DB.Where("id = ? AND agency_id = ?", templateID, user.AgencyID).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC, id ASC")
		}).
		First(&template).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.RespondError(c, models.NewNotFoundError("template", templateID))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load template", err)
	}

	return c.JSON(utils.SuccessResponse(template))
}

// UpdateTemplate replaces the template's fields and step list wholesale.
// Existing instances keep the step content they copied at apply time.
func (tc *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	templateID := utils.ParseUint(c.Params("id"))

	var input struct {
		Name        string      `json:"name" validate:"required,max=200"`
		Description string      `json:"description" validate:"omitempty,max=2000"`
		TargetType  string      `json:"target_type" validate:"required,oneof=onboarding lead_nurturing requote retention other"`
		IsActive    *bool       `json:"is_active"`
		Steps       []stepInput `json:"steps" validate:"required,min=1,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var template models.FollowUpTemplate
	if err := tc.DB.Where("id = ? AND agency_id = ?", templateID, user.AgencyID).
		First(&template).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.RespondError(c, models.NewNotFoundError("template", templateID))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load template", err)
	}

	template.Name = input.Name
	template.Description = input.Description
	template.TargetType = models.TargetType(input.TargetType)
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", template.ID).Delete(&models.TemplateStep{}).Error; err != nil {
			return err
		}
		template.Steps = buildSteps(input.Steps)
		return tx.Save(&template).Error
	}); err != nil {
		tc.Logger.Printf("Failed to update template %d: %v", template.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update template", err)
	}

	return c.JSON(utils.SuccessResponse(template))
}

// DeactivateTemplate retires a template from the apply picker. Existing
// instances are untouched, and an authorized caller may still apply it
// directly by id.
func (tc *TemplateController) DeactivateTemplate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	templateID := utils.ParseUint(c.Params("id"))

	result := tc.DB.Model(&models.FollowUpTemplate{}).
		Where("id = ? AND agency_id = ?", templateID, user.AgencyID).
		Update("is_active", false)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate template", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.RespondError(c, models.NewNotFoundError("template", templateID))
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"deactivated": true}))
}

func buildSteps(inputs []stepInput) []models.TemplateStep {
	steps := make([]models.TemplateStep, 0, len(inputs))
	for _, s := range inputs {
		steps = append(steps, models.TemplateStep{
			DayNumber:      s.DayNumber,
			ActionType:     models.ActionType(s.ActionType),
			Title:          s.Title,
			Description:    s.Description,
			ScriptTemplate: s.ScriptTemplate,
		})
	}
	return steps
}
