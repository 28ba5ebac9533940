package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "agencydesk/controllers"
	"agencydesk/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	sequenceController := controller.NewSequenceController(db, log.New(os.Stdout, "SEQUENCE: ", log.LstdFlags))
	taskController := controller.NewTaskController(db, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	templateController := controller.NewTemplateController(db, log.New(os.Stdout, "TEMPLATE: ", log.LstdFlags))
	plannerController := controller.NewPlannerController(db, log.New(os.Stdout, "PLANNER: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	staffController := controller.NewStaffController(db, log.New(os.Stdout, "STAFF: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Template routes
	template := api.Group("/templates")
	template.Post("/", templateController.CreateTemplate)
	template.Get("/", templateController.GetTemplates)
	template.Get("/:id", templateController.GetTemplate)
	template.Put("/:id", templateController.UpdateTemplate)
	template.Delete("/:id", templateController.DeactivateTemplate)

	// Sequence routes; applying fans out into task inserts so it carries
	// its own rate limit
	sequence := api.Group("/sequences")
	sequence.Post("/apply", middleware.ApplyRateLimiter(), sequenceController.ApplySequence)
	sequence.Get("/", sequenceController.GetSequences)
	sequence.Get("/:id", sequenceController.GetSequence)
	sequence.Post("/:id/reassign", sequenceController.ReassignSequence)
	sequence.Get("/:id/candidates", sequenceController.GetAssigneeCandidates)

	// Task routes
	task := api.Group("/tasks")
	task.Get("/", taskController.ListTasks)
	task.Get("/board", taskController.GetTaskBoard)
	task.Post("/:id/complete", taskController.CompleteTask)

	// Planner + dashboard
	api.Get("/planner/outlook", plannerController.GetWeekOutlook)
	api.Get("/dashboard/stats", dashboardController.GetDashboardStats)

	// Staff directory
	staff := api.Group("/staff")
	staff.Post("/", staffController.CreateStaffMember)
	staff.Get("/", staffController.GetStaffMembers)
	staff.Delete("/:id", staffController.DeactivateStaffMember)

	// WebSocket feed for live dashboard counts
	app.Get("/api/v1/tasks/feed", websocket.New(func(c *websocket.Conn) {
		controller.HandleTaskFeedWS(c)
	}))
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
