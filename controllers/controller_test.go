package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"agencydesk/models"
)

// openTestDB opens an in-memory database migrated to the full schema. The
// pool is pinned to one connection so every query sees the same memory
// store.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Agency{},
		&models.AgentUser{},
		&models.StaffMember{},
		&models.FollowUpTemplate{},
		&models.TemplateStep{},
		&models.SequenceInstance{},
		&models.FollowUpTask{},
	))
	return db
}

// newTestApp mounts handlers under /api/v1 the way the route setup does,
// with the JWT middleware replaced by one that injects the signed-in user.
func newTestApp(user *models.AgentUser, register func(api fiber.Router)) *fiber.App {
	app := fiber.New()
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})
	register(api)
	return app
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func seedAgency(t *testing.T, db *gorm.DB) (*models.Agency, *models.AgentUser, *models.StaffMember) {
	t.Helper()

	agency := &models.Agency{Name: "Harbor Insurance Group"}
	require.NoError(t, db.Create(agency).Error)

	user := &models.AgentUser{
		AgencyID:     agency.ID,
		Email:        "dana@harborinsurance.test",
		PasswordHash: "unused",
		FirstName:    "Dana",
		LastName:     "Reyes",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	staff := &models.StaffMember{
		AgencyID:  agency.ID,
		FirstName: "Sam",
		LastName:  "Ortiz",
		Role:      "csr",
		IsActive:  true,
	}
	require.NoError(t, db.Create(staff).Error)

	return agency, user, staff
}

func seedTemplate(t *testing.T, db *gorm.DB, agencyID uint, days ...int) *models.FollowUpTemplate {
	t.Helper()

	template := &models.FollowUpTemplate{
		AgencyID:   agencyID,
		Name:       "New Customer Onboarding",
		TargetType: models.TargetOnboarding,
		IsActive:   true,
	}
	for _, day := range days {
		template.Steps = append(template.Steps, models.TemplateStep{
			DayNumber:  day,
			ActionType: models.ActionText,
			Title:      "Check in",
		})
	}
	require.NoError(t, db.Create(template).Error)
	return template
}
