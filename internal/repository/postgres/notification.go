package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"joinme-backend/internal/domain"
	"joinme-backend/internal/logger"
	"joinme-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	query := `INSERT INTO notifications (id, to_user_id, message, timestamp)
	          VALUES ($1, $2, $3, $4)`
	logger.StoreCall("INSERT", "notifications", "toUserID", n.ToUserID)
	_, err := r.db.ExecContext(ctx, query, n.ID, n.ToUserID, n.Message, n.Timestamp)
	logger.StoreResult("INSERT", err, "notificationID", n.ID)
	return err
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error) {
	query := `SELECT id, to_user_id, message, timestamp FROM notifications WHERE to_user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.ToUserID, &n.Message, &n.Timestamp); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
