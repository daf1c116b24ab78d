package jobs

import (
	"context"
	"fmt"
	"time"

	"joinme-backend/internal/domain"
	"joinme-backend/internal/logger"
)

// SendTripStartReminders notifies owners and participants of trips that
// start within the next 24 hours. Owners with a known email address also
// get an email reminder.
func (jr *JobRunner) SendTripStartReminders() {
	jr.runWithRecovery("SendTripStartReminders", func() {
		ctx := context.Background()
		now := time.Now()
		horizon := now.Add(24 * time.Hour)

		trips, err := jr.store.Trips.List(ctx)
		if err != nil {
			logger.Error("Failed to list trips for reminders", "error", err)
			return
		}

		count := 0
		for _, trip := range trips {
			if trip.StartDate == nil || trip.StartDate.Before(now) || trip.StartDate.After(horizon) {
				continue
			}

			message := fmt.Sprintf("%s starts on %s", trip.Name, trip.StartDate.Format("Jan 2, 2006"))
			recipients := append([]string{trip.OwnerID}, trip.Participants...)
			for _, userID := range recipients {
				if err := jr.services.Notification.NotifyOwner(ctx, userID, message); err != nil {
					logger.Error("Failed to record trip reminder",
						"trip_id", trip.ID,
						"user_id", userID,
						"error", err)
				}
			}

			jr.emailOwner(ctx, trip)
			count++
		}

		logger.Info("Trip start reminders sent", "trips", count)
	})
}

func (jr *JobRunner) emailOwner(ctx context.Context, trip domain.Trip) {
	if jr.services.Email == nil {
		return
	}
	owner, err := jr.store.Users.GetByID(ctx, trip.OwnerID)
	if err != nil || owner.Email == "" {
		logger.Debug("Skipping reminder email, owner unresolved", "trip_id", trip.ID)
		return
	}
	err = jr.services.Email.SendTripReminder(ctx, owner.Email, owner.Username, trip.Name,
		trip.StartDate.Format("Jan 2, 2006"))
	if err != nil {
		logger.Error("Failed to send reminder email",
			"trip_id", trip.ID,
			"email", owner.Email,
			"error", err)
	}
}
