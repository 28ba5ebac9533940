package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"agencydesk/models"
)

// RollupWorker periodically refreshes the denormalized open/overdue
// counters on sequence instances. The per-task derived status stays
// authoritative; these columns only let list views skip a join. Stale
// values between runs are acceptable by construction.
type RollupWorker struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Interval time.Duration
}

func NewRollupWorker(db *gorm.DB, logger *log.Logger, interval time.Duration) *RollupWorker {
	return &RollupWorker{
		DB:       db,
		Logger:   logger,
		Interval: interval,
	}
}

func (rw *RollupWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Println("Rollup worker started")

	rw.refreshCounters()

	ticker := time.NewTicker(rw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Rollup worker shutting down...")
			return
		case <-ticker.C:
			rw.refreshCounters()
		}
	}
}

func (rw *RollupWorker) refreshCounters() {
	var instances []models.SequenceInstance
	if err := rw.DB.Preload("Tasks").Find(&instances).Error; err != nil {
		rw.Logger.Printf("Error fetching instances for rollup: %v", err)
		return
	}

	now := time.Now()
	updated := 0

	for i := range instances {
		open, overdue := 0, 0
		for j := range instances[i].Tasks {
			task := instances[i].Tasks[j]
			if !task.IsOpen() {
				continue
			}
			open++
			if task.Status(now) == models.StatusOverdue {
				overdue++
			}
		}

		if open == instances[i].OpenTaskCount && overdue == instances[i].OverdueTaskCount {
			continue
		}

		if err := rw.DB.Model(&models.SequenceInstance{}).
			Where("id = ?", instances[i].ID).
			Updates(map[string]interface{}{
				"open_task_count":    open,
				"overdue_task_count": overdue,
			}).Error; err != nil {
			rw.Logger.Printf("Error updating rollup for instance %d: %v", instances[i].ID, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		rw.Logger.Printf("Rollup refreshed %d of %d instances", updated, len(instances))
	}
}
