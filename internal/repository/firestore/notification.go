package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"joinme-backend/internal/domain"
	"joinme-backend/internal/logger"
	"joinme-backend/internal/repository"
)

type notificationRepository struct {
	client *firestore.Client
}

func NewNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &notificationRepository{client: client}
}

type notificationDoc struct {
	ToUserID  string     `firestore:"toUserId"`
	Message   string     `firestore:"message"`
	Timestamp *time.Time `firestore:"timestamp"`
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	ts := n.Timestamp
	logger.StoreCall("ADD", notificationsCollection, "toUserID", n.ToUserID)
	ref, _, err := r.client.Collection(notificationsCollection).Add(ctx, notificationDoc{
		ToUserID:  n.ToUserID,
		Message:   n.Message,
		Timestamp: &ts,
	})
	logger.StoreResult("ADD", err)
	if err != nil {
		return err
	}
	n.ID = ref.ID
	return nil
}

// ListByRecipient returns notifications in snapshot order. The service
// sorts by timestamp, which keeps the query free of a composite index.
func (r *notificationRepository) ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error) {
	docs := r.client.Collection(notificationsCollection).
		Where("toUserId", "==", userID).
		Documents(ctx)
	defer docs.Stop()

	var notes []domain.Notification
	for {
		snap, err := docs.Next()
		if err == iterator.Done {
			return notes, nil
		}
		if err != nil {
			return nil, err
		}
		var doc notificationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		n := domain.Notification{
			ID:       snap.Ref.ID,
			ToUserID: doc.ToUserID,
			Message:  doc.Message,
		}
		if doc.Timestamp != nil {
			n.Timestamp = *doc.Timestamp
		}
		notes = append(notes, n)
	}
}
