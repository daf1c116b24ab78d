// Package memory provides in-process repository implementations. They back
// the "memory" store type for local development and stand in for the
// document store in tests. All mutation is serialized under a mutex, which
// gives membership updates the atomic set semantics the contract requires.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"joinme-backend/internal/domain"
	"joinme-backend/internal/repository"
)

// NewStore returns a Store backed entirely by process memory.
func NewStore() *repository.Store {
	return &repository.Store{
		Trips:         NewTripRepository(),
		Notifications: NewNotificationRepository(),
		Users:         NewUserRepository(),
	}
}

type TripRepository struct {
	mu    sync.Mutex
	trips map[string]domain.Trip
	subs  map[*tripSubscription]struct{}
}

func NewTripRepository() *TripRepository {
	return &TripRepository{
		trips: make(map[string]domain.Trip),
		subs:  make(map[*tripSubscription]struct{}),
	}
}

func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if trip.Participants == nil {
		trip.Participants = []string{}
	}
	r.trips[trip.ID] = cloneTrip(*trip)
	r.broadcastLocked()
	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneTrip(t)
	return &c, nil
}

func (r *TripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), nil
}

func (r *TripRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Trip
	for _, t := range r.snapshotLocked() {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TripRepository) ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Trip
	for _, t := range r.snapshotLocked() {
		if t.HasParticipant(userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TripRepository) UpdateField(ctx context.Context, id string, field domain.TripField, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return domain.ErrNotFound
	}
	switch field {
	case domain.TripFieldName:
		t.Name, _ = value.(string)
	case domain.TripFieldDescription:
		t.Description, _ = value.(string)
	case domain.TripFieldStartDate:
		t.StartDate = asTimePtr(value)
	case domain.TripFieldEndDate:
		t.EndDate = asTimePtr(value)
	default:
		return domain.ErrValidation
	}
	r.trips[id] = t
	r.broadcastLocked()
	return nil
}

func (r *TripRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.trips, id)
	r.broadcastLocked()
	return nil
}

func (r *TripRepository) AddParticipant(ctx context.Context, tripID, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !t.HasParticipant(userID) {
		t.Participants = append(append([]string{}, t.Participants...), userID)
		r.trips[tripID] = t
		r.broadcastLocked()
	}
	return append([]string{}, t.Participants...), nil
}

func (r *TripRepository) RemoveParticipant(ctx context.Context, tripID, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	kept := make([]string, 0, len(t.Participants))
	for _, p := range t.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	if len(kept) != len(t.Participants) {
		t.Participants = kept
		r.trips[tripID] = t
		r.broadcastLocked()
	}
	return append([]string{}, t.Participants...), nil
}

func (r *TripRepository) Watch(ctx context.Context) (repository.TripSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub := &tripSubscription{
		repo: r,
		ch:   make(chan []domain.Trip, 16),
	}
	r.subs[sub] = struct{}{}
	// Initial snapshot, matching the live-query behavior of the document
	// store backends.
	sub.ch <- r.snapshotLocked()
	return sub, nil
}

// snapshotLocked returns a stable, defensively copied view of all trips.
func (r *TripRepository) snapshotLocked() []domain.Trip {
	out := make([]domain.Trip, 0, len(r.trips))
	for _, t := range r.trips {
		out = append(out, cloneTrip(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *TripRepository) broadcastLocked() {
	if len(r.subs) == 0 {
		return
	}
	snap := r.snapshotLocked()
	for sub := range r.subs {
		select {
		case sub.ch <- snap:
		default:
			// Slow consumer: drop this update, the next one carries the
			// full snapshot anyway.
		}
	}
}

type tripSubscription struct {
	repo *TripRepository
	ch   chan []domain.Trip
	once sync.Once
}

func (s *tripSubscription) Updates() <-chan []domain.Trip { return s.ch }

func (s *tripSubscription) Cancel() {
	s.once.Do(func() {
		s.repo.mu.Lock()
		delete(s.repo.subs, s)
		s.repo.mu.Unlock()
		close(s.ch)
	})
}

type NotificationRepository struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	r.notes = append(r.notes, *note)
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notes {
		if n.ToUserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

type UserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func cloneTrip(t domain.Trip) domain.Trip {
	t.Participants = append([]string{}, t.Participants...)
	if t.StartDate != nil {
		sd := *t.StartDate
		t.StartDate = &sd
	}
	if t.EndDate != nil {
		ed := *t.EndDate
		t.EndDate = &ed
	}
	return t
}

func asTimePtr(value any) *time.Time {
	switch v := value.(type) {
	case *time.Time:
		return v
	case time.Time:
		return &v
	}
	return nil
}
