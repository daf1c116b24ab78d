package postgres

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"joinme-backend/internal/repository"
)

// NewStore wires the PostgreSQL repositories over one connection pool.
// watchInterval is the polling period of trip subscriptions.
func NewStore(db *sql.DB, watchInterval time.Duration) *repository.Store {
	return &repository.Store{
		Trips:         NewTripRepository(db, watchInterval),
		Notifications: NewNotificationRepository(db),
		Users:         NewUserRepository(db),
	}
}
