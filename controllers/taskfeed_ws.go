package controller

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"agencydesk/config"
	"agencydesk/models"
	"agencydesk/utils"
)

type taskFeedCounts struct {
	Overdue        int    `json:"overdue"`
	DueToday       int    `json:"due_today"`
	Pending        int    `json:"pending"`
	CompletedToday int    `json:"completed_today"`
	AsOf           string `json:"as_of"`
}

// HandleTaskFeedWS streams the agency's live status counts to the
// dashboard header. Auth comes in as a token query parameter since browser
// websockets cannot set headers.
func HandleTaskFeedWS(c *websocket.Conn) {
	defer c.Close()

	claims, err := utils.ParseJWTToken(c.Query("token"))
	if err != nil {
		log.Printf("Task feed rejected: %v", err)
		return
	}

	var user models.AgentUser
	if err := config.DB.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
		log.Printf("Task feed rejected: user %d not available", claims.UserID)
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		counts, err := taskFeedSnapshot(user.AgencyID)
		if err != nil {
			log.Printf("Task feed query failed: %v", err)
			return
		}
		if err := c.WriteJSON(counts); err != nil {
			return
		}
		<-ticker.C
	}
}

func taskFeedSnapshot(agencyID uint) (taskFeedCounts, error) {
	now := time.Now()

	var tasks []models.FollowUpTask
	if err := config.DB.
		Joins("JOIN sequence_instances ON sequence_instances.id = follow_up_tasks.instance_id").
		Where("sequence_instances.agency_id = ?", agencyID).
		Find(&tasks).Error; err != nil {
		return taskFeedCounts{}, err
	}

	counts := taskFeedCounts{AsOf: now.Format(time.RFC3339)}
	for i := range tasks {
		switch tasks[i].Status(now) {
		case models.StatusOverdue:
			counts.Overdue++
		case models.StatusDue:
			counts.DueToday++
		case models.StatusPending:
			counts.Pending++
		case models.StatusCompleted:
			if tasks[i].CompletedOn(now) {
				counts.CompletedToday++
			}
		}
	}
	return counts, nil
}
