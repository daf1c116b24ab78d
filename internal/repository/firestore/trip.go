package firestore

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"joinme-backend/internal/domain"
	"joinme-backend/internal/logger"
	"joinme-backend/internal/repository"
)

type tripRepository struct {
	client *firestore.Client
}

func NewTripRepository(client *firestore.Client) repository.TripRepository {
	return &tripRepository{client: client}
}

// tripDoc mirrors the persisted document layout of the trips collection.
type tripDoc struct {
	Name         string     `firestore:"name"`
	Description  string     `firestore:"description"`
	StartDate    *time.Time `firestore:"startDate"`
	EndDate      *time.Time `firestore:"endDate"`
	LocationLat  *float64   `firestore:"locationLat"`
	LocationLng  *float64   `firestore:"locationLng"`
	Participants []string   `firestore:"participants"`
	UserID       string     `firestore:"userId"`
}

func (r *tripRepository) trips() *firestore.CollectionRef {
	return r.client.Collection(tripsCollection)
}

func (r *tripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	if trip.Participants == nil {
		trip.Participants = []string{}
	}
	logger.StoreCall("ADD", tripsCollection, "ownerID", trip.OwnerID)
	ref, _, err := r.trips().Add(ctx, docFromTrip(trip))
	logger.StoreResult("ADD", err)
	if err != nil {
		return err
	}
	trip.ID = ref.ID
	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	snap, err := r.trips().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tripFromSnapshot(snap)
}

func (r *tripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	return r.queryTrips(ctx, r.trips().Query)
}

func (r *tripRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	return r.queryTrips(ctx, r.trips().Where("userId", "==", ownerID))
}

func (r *tripRepository) ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error) {
	return r.queryTrips(ctx, r.trips().Where("participants", "array-contains", userID))
}

func (r *tripRepository) UpdateField(ctx context.Context, id string, field domain.TripField, value any) error {
	if !domain.IsMutableTripField(field) {
		return domain.ErrValidation
	}
	_, err := r.trips().Doc(id).Update(ctx, []firestore.Update{
		{Path: string(field), Value: value},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotFound
	}
	return err
}

func (r *tripRepository) Delete(ctx context.Context, id string) error {
	// Firestore deletes are idempotent; probe first so callers can tell
	// an already-deleted trip apart.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	_, err := r.trips().Doc(id).Delete(ctx)
	return err
}

// AddParticipant relies on the store's native set-union primitive, so
// concurrent joins by different users cannot overwrite each other.
func (r *tripRepository) AddParticipant(ctx context.Context, tripID, userID string) ([]string, error) {
	_, err := r.trips().Doc(tripID).Update(ctx, []firestore.Update{
		{Path: "participants", Value: firestore.ArrayUnion(userID)},
	})
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.currentParticipants(ctx, tripID)
}

func (r *tripRepository) RemoveParticipant(ctx context.Context, tripID, userID string) ([]string, error) {
	_, err := r.trips().Doc(tripID).Update(ctx, []firestore.Update{
		{Path: "participants", Value: firestore.ArrayRemove(userID)},
	})
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.currentParticipants(ctx, tripID)
}

// Watch subscribes to the trips collection snapshot listener and forwards
// each snapshot until cancelled.
func (r *tripRepository) Watch(ctx context.Context) (repository.TripSubscription, error) {
	watchCtx, cancel := context.WithCancel(context.Background())
	iter := r.trips().Snapshots(watchCtx)

	sub := &snapshotSubscription{
		ch: make(chan []domain.Trip, 16),
		cancel: func() {
			cancel()
			iter.Stop()
		},
	}

	go func() {
		defer close(sub.ch)
		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logger.Warn("Trip snapshot listener stopped", "error", err)
				}
				return
			}
			trips, err := collectTrips(snap.Documents)
			if err != nil {
				logger.Warn("Trip snapshot decode failed", "error", err)
				continue
			}
			select {
			case sub.ch <- trips:
			case <-watchCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}

func (r *tripRepository) currentParticipants(ctx context.Context, tripID string) ([]string, error) {
	trip, err := r.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return trip.Participants, nil
}

func (r *tripRepository) queryTrips(ctx context.Context, q firestore.Query) ([]domain.Trip, error) {
	return collectTrips(q.Documents(ctx))
}

func collectTrips(docs *firestore.DocumentIterator) ([]domain.Trip, error) {
	defer docs.Stop()
	var trips []domain.Trip
	for {
		snap, err := docs.Next()
		if err == iterator.Done {
			return trips, nil
		}
		if err != nil {
			return nil, err
		}
		trip, err := tripFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}
}

func tripFromSnapshot(snap *firestore.DocumentSnapshot) (*domain.Trip, error) {
	var doc tripDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	participants := doc.Participants
	if participants == nil {
		participants = []string{}
	}
	return &domain.Trip{
		ID:           snap.Ref.ID,
		Name:         doc.Name,
		Description:  doc.Description,
		StartDate:    doc.StartDate,
		EndDate:      doc.EndDate,
		LocationLat:  doc.LocationLat,
		LocationLng:  doc.LocationLng,
		Participants: participants,
		OwnerID:      doc.UserID,
	}, nil
}

func docFromTrip(trip *domain.Trip) tripDoc {
	return tripDoc{
		Name:         trip.Name,
		Description:  trip.Description,
		StartDate:    trip.StartDate,
		EndDate:      trip.EndDate,
		LocationLat:  trip.LocationLat,
		LocationLng:  trip.LocationLng,
		Participants: trip.Participants,
		UserID:       trip.OwnerID,
	}
}

type snapshotSubscription struct {
	ch     chan []domain.Trip
	cancel func()
	once   sync.Once
}

func (s *snapshotSubscription) Updates() <-chan []domain.Trip { return s.ch }

func (s *snapshotSubscription) Cancel() {
	s.once.Do(s.cancel)
}
