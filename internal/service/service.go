package service

import (
	"context"

	"joinme-backend/internal/domain"
)

// TripService owns the visibility and membership rules of trips. Mutating
// operations report failures; listing operations are best-effort and yield
// an empty result when the store cannot be reached.
type TripService interface {
	CreateTrip(ctx context.Context, ownerID string, in domain.NewTrip) (*domain.Trip, error)
	GetTrip(ctx context.Context, id string) (*domain.Trip, error)
	ListDiscoverable(ctx context.Context, userID, query string) ([]domain.Trip, error)
	WatchDiscoverable(ctx context.Context, userID, query string) (*DiscoverySubscription, error)
	ListOwned(ctx context.Context, ownerID string) ([]domain.Trip, error)
	ListJoined(ctx context.Context, userID string) ([]domain.Trip, error)
	UpdateTripField(ctx context.Context, tripID string, field domain.TripField, value any) error
	DeleteTrip(ctx context.Context, tripID, requestedBy string) error
	JoinTrip(ctx context.Context, tripID, userID, actorName string) ([]string, error)
	LeaveTrip(ctx context.Context, tripID, userID string) ([]string, error)
	ResolveUsername(ctx context.Context, userID string) string
}

// NotificationService is the dispatcher that records join notifications
// for trip owners and lists them for display.
type NotificationService interface {
	NotifyOwner(ctx context.Context, toUserID, message string) error
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
}

type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// TokenPair carries one access and one refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type EmailService interface {
	SendTripReminder(ctx context.Context, email, name, tripName, startDate string) error
}
