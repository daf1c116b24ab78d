package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"joinme-backend/internal/domain"
	"joinme-backend/internal/logger"
	"joinme-backend/internal/repository"
)

// UnknownUsername is the fallback shown when a participant's user record
// cannot be resolved. Cosmetic lookups never fail their caller.
const UnknownUsername = "unknown"

type tripService struct {
	tripRepo repository.TripRepository
	userRepo repository.UserRepository
	notifier NotificationService
}

func NewTripService(tripRepo repository.TripRepository, userRepo repository.UserRepository, notifier NotificationService) TripService {
	return &tripService{
		tripRepo: tripRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (s *tripService) CreateTrip(ctx context.Context, ownerID string, in domain.NewTrip) (*domain.Trip, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	trip := &domain.Trip{
		Name:         in.Name,
		Description:  in.Description,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		LocationLat:  in.LocationLat,
		LocationLng:  in.LocationLng,
		Participants: []string{},
		OwnerID:      ownerID,
	}
	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, domain.StoreError(err)
	}
	return trip, nil
}

func (s *tripService) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return trip, nil
}

func (s *tripService) ListDiscoverable(ctx context.Context, userID, query string) ([]domain.Trip, error) {
	trips, err := s.tripRepo.List(ctx)
	if err != nil {
		logger.Warn("Discovery listing failed", "error", err)
		return []domain.Trip{}, nil
	}
	return discoverable(trips, userID, query, time.Now()), nil
}

// WatchDiscoverable opens a live discovery feed. The visibility and search
// rules are re-applied to every snapshot the store delivers. Callers must
// Cancel the subscription when done.
func (s *tripService) WatchDiscoverable(ctx context.Context, userID, query string) (*DiscoverySubscription, error) {
	upstream, err := s.tripRepo.Watch(ctx)
	if err != nil {
		return nil, domain.StoreError(err)
	}

	sub := &DiscoverySubscription{
		upstream: upstream,
		ch:       make(chan []domain.Trip, 16),
	}

	go func() {
		defer close(sub.ch)
		for trips := range upstream.Updates() {
			select {
			case sub.ch <- discoverable(trips, userID, query, time.Now()):
			default:
				// Slow consumer: skip, every snapshot is complete.
			}
		}
	}()

	return sub, nil
}

func (s *tripService) ListOwned(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	trips, err := s.tripRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.Warn("Owned listing failed", "ownerID", ownerID, "error", err)
		return []domain.Trip{}, nil
	}
	return trips, nil
}

func (s *tripService) ListJoined(ctx context.Context, userID string) ([]domain.Trip, error) {
	trips, err := s.tripRepo.ListByParticipant(ctx, userID)
	if err != nil {
		logger.Warn("Joined listing failed", "userID", userID, "error", err)
		return []domain.Trip{}, nil
	}
	// The owner can end up in their own participant set only through
	// out-of-band writes; joined listings exclude own trips regardless.
	var out []domain.Trip
	for _, t := range trips {
		if t.OwnerID != userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *tripService) UpdateTripField(ctx context.Context, tripID string, field domain.TripField, value any) error {
	if !domain.IsMutableTripField(field) {
		return fmt.Errorf("%w: field %q is not editable", domain.ErrValidation, field)
	}
	switch field {
	case domain.TripFieldName:
		name, ok := value.(string)
		if !ok || name == "" {
			return fmt.Errorf("%w: trip name must not be blank", domain.ErrValidation)
		}
	case domain.TripFieldDescription:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: description must be a string", domain.ErrValidation)
		}
	case domain.TripFieldStartDate, domain.TripFieldEndDate:
		switch value.(type) {
		case *time.Time, time.Time, nil:
		default:
			return fmt.Errorf("%w: %s must be a date", domain.ErrValidation, field)
		}
	}
	return domain.StoreError(s.tripRepo.UpdateField(ctx, tripID, field, value))
}

func (s *tripService) DeleteTrip(ctx context.Context, tripID, requestedBy string) error {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return domain.StoreError(err)
	}
	if trip.OwnerID != requestedBy {
		return fmt.Errorf("%w: only the owner can delete a trip", domain.ErrPermissionDenied)
	}
	return domain.StoreError(s.tripRepo.Delete(ctx, tripID))
}

// JoinTrip adds userID to the participant set and notifies the owner.
// Joining an already-joined trip is a silent no-op so duplicate taps never
// raise a second notification. The membership add itself is atomic at the
// store, so concurrent joins by different users both land.
func (s *tripService) JoinTrip(ctx context.Context, tripID, userID, actorName string) ([]string, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	if trip.OwnerID == userID {
		return nil, fmt.Errorf("%w: the owner cannot join their own trip", domain.ErrPermissionDenied)
	}
	if trip.HasParticipant(userID) {
		return trip.Participants, nil
	}

	participants, err := s.tripRepo.AddParticipant(ctx, tripID, userID)
	if err != nil {
		return nil, domain.StoreError(err)
	}

	if actorName == "" {
		actorName = s.ResolveUsername(ctx, userID)
	}
	message := fmt.Sprintf("%s joined %s", actorName, trip.Name)
	if err := s.notifier.NotifyOwner(ctx, trip.OwnerID, message); err != nil {
		// The join already happened; a lost notification is logged, not
		// surfaced.
		logger.Warn("Join notification failed", "tripID", tripID, "ownerID", trip.OwnerID, "error", err)
	}
	return participants, nil
}

// LeaveTrip removes userID from the participant set. Leaving a trip the
// user never joined is a no-op, and no notification is sent either way.
func (s *tripService) LeaveTrip(ctx context.Context, tripID, userID string) ([]string, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	if !trip.HasParticipant(userID) {
		return trip.Participants, nil
	}
	participants, err := s.tripRepo.RemoveParticipant(ctx, tripID, userID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return participants, nil
}

func (s *tripService) ResolveUsername(ctx context.Context, userID string) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.Username == "" {
		return UnknownUsername
	}
	return user.Username
}

// discoverable applies the visibility invariant and the name filter while
// preserving store order.
func discoverable(trips []domain.Trip, userID, query string, now time.Time) []domain.Trip {
	visible := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if t.IsDiscoverableBy(userID, now) {
			visible = append(visible, t)
		}
	}
	return domain.FilterTripsByName(visible, query)
}

// DiscoverySubscription is a cancellable live feed of discovery listings.
type DiscoverySubscription struct {
	upstream repository.TripSubscription
	ch       chan []domain.Trip
	once     sync.Once
}

func (s *DiscoverySubscription) Updates() <-chan []domain.Trip { return s.ch }

// Cancel releases the underlying store listener. Updates closes once the
// upstream drains.
func (s *DiscoverySubscription) Cancel() {
	s.once.Do(s.upstream.Cancel)
}
