package service

import (
	"context"
	"sort"
	"time"

	"joinme-backend/internal/alert"
	"joinme-backend/internal/domain"
	"joinme-backend/internal/logger"
	"joinme-backend/internal/repository"
)

const alertTitle = "JoinMe notification"

type notificationService struct {
	noteRepo repository.NotificationRepository
	alerter  alert.Alerter
}

func NewNotificationService(noteRepo repository.NotificationRepository, alerter alert.Alerter) NotificationService {
	return &notificationService{noteRepo: noteRepo, alerter: alerter}
}

// NotifyOwner persists the notification, then raises a best-effort local
// alert. The alert fires on the acting process, not the recipient's
// device; the persisted record is what the owner later reads.
func (s *notificationService) NotifyOwner(ctx context.Context, toUserID, message string) error {
	note := &domain.Notification{
		ToUserID:  toUserID,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return domain.StoreError(err)
	}
	s.alerter.Show(alertTitle, message)
	return nil
}

// ListNotifications returns the recipient's notifications newest first.
// Records without a message or timestamp are dropped rather than shown
// with placeholders.
func (s *notificationService) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	notes, err := s.noteRepo.ListByRecipient(ctx, userID)
	if err != nil {
		logger.Warn("Notification listing failed", "userID", userID, "error", err)
		return []domain.Notification{}, nil
	}
	kept := make([]domain.Notification, 0, len(notes))
	for _, n := range notes {
		if n.Message == "" || n.Timestamp.IsZero() {
			continue
		}
		kept = append(kept, n)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Timestamp.After(kept[j].Timestamp)
	})
	return kept, nil
}
