package utils

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"agencydesk/models"
)

// GenerateRateLimitKey creates a unique key for rate limiting
func GenerateRateLimitKey(userID uint, path string) string {
	return fmt.Sprintf("rl:%d:%s", userID, path)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// RespondError maps a domain error to its HTTP status and renders it.
func RespondError(c *fiber.Ctx, err error) error {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError
	var conflictErr *models.ConflictError

	switch {
	case errors.As(err, &validationErr):
		return ErrorResponse(c, fiber.StatusBadRequest, validationErr.Message, nil)
	case errors.As(err, &notFoundErr):
		return ErrorResponse(c, fiber.StatusNotFound, notFoundErr.Error(), nil)
	case errors.As(err, &conflictErr):
		return ErrorResponse(c, fiber.StatusConflict, conflictErr.Message, nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorResponse(c, fiber.StatusNotFound, "record not found", nil)
	default:
		return ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", err)
	}
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// PaginatedResponse structure for paginated results
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
