package repository

import (
	"context"

	"joinme-backend/internal/domain"
)

// TripRepository translates trip operations into store calls. The store is
// the single source of truth; implementations hold no state across calls.
//
// AddParticipant and RemoveParticipant must apply atomic set semantics:
// two concurrent joins by different users both end up in the participant
// set, never a lost update from read-modify-write interleaving.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) error
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Trip, error)
	ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error)
	UpdateField(ctx context.Context, id string, field domain.TripField, value any) error
	Delete(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, tripID, userID string) ([]string, error)
	RemoveParticipant(ctx context.Context, tripID, userID string) ([]string, error)

	// Watch delivers the full trip collection on every store change,
	// starting with the current snapshot. The subscription keeps
	// delivering until cancelled.
	Watch(ctx context.Context) (TripSubscription, error)
}

// TripSubscription is a cancellable live feed of trip snapshots. Cancel
// releases the underlying store listener and closes the Updates channel;
// callers must cancel when done to avoid leaking listeners.
type TripSubscription interface {
	Updates() <-chan []domain.Trip
	Cancel()
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Trips         TripRepository
	Notifications NotificationRepository
	Users         UserRepository
}
