package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"agencydesk/models"
	"agencydesk/utils"
)

type StaffController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewStaffController(db *gorm.DB, logger *log.Logger) *StaffController {
	return &StaffController{
		DB:     db,
		Logger: logger,
	}
}

func (sc *StaffController) CreateStaffMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)

	var input struct {
		FirstName string `json:"first_name" validate:"required,max=100"`
		LastName  string `json:"last_name" validate:"omitempty,max=100"`
		Role      string `json:"role" validate:"omitempty,max=100"`
		Email     string `json:"email" validate:"omitempty,email"`
		Phone     string `json:"phone" validate:"omitempty,max=30"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	staff := models.StaffMember{
		AgencyID:  user.AgencyID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
		Email:     input.Email,
		Phone:     input.Phone,
		IsActive:  true,
	}

	if err := sc.DB.Create(&staff).Error; err != nil {
		sc.Logger.Printf("Failed to create staff member: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create staff member", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(staff))
}

func (sc *StaffController) GetStaffMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)

	query := sc.DB.Where("agency_id = ?", user.AgencyID)
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var staff []models.StaffMember
	if err := query.Order("first_name ASC").Find(&staff).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch staff", err)
	}

	return c.JSON(utils.SuccessResponse(staff))
}

func (sc *StaffController) DeactivateStaffMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.AgentUser)
	staffID := utils.ParseUint(c.Params("id"))

	result := sc.DB.Model(&models.StaffMember{}).
		Where("id = ? AND agency_id = ?", staffID, user.AgencyID).
		Update("is_active", false)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate staff member", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.RespondError(c, models.NewNotFoundError("staff member", staffID))
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"deactivated": true}))
}
