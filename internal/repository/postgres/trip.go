package postgres

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"joinme-backend/internal/domain"
	"joinme-backend/internal/logger"
	"joinme-backend/internal/repository"
)

type tripRepository struct {
	db            *sql.DB
	watchInterval time.Duration
}

func NewTripRepository(db *sql.DB, watchInterval time.Duration) repository.TripRepository {
	if watchInterval <= 0 {
		watchInterval = 2 * time.Second
	}
	return &tripRepository{db: db, watchInterval: watchInterval}
}

const tripColumns = `id, name, description, start_date, end_date, location_lat, location_lng, participants, user_id`

func (r *tripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if trip.Participants == nil {
		trip.Participants = []string{}
	}
	query := `INSERT INTO trips (id, name, description, start_date, end_date, location_lat, location_lng, participants, user_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	logger.StoreCall("INSERT", "trips", "tripID", trip.ID, "ownerID", trip.OwnerID)
	_, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.Name, trip.Description, trip.StartDate, trip.EndDate,
		trip.LocationLat, trip.LocationLng, pq.Array(trip.Participants), trip.OwnerID)
	logger.StoreResult("INSERT", err, "tripID", trip.ID)
	return err
}

func (r *tripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return trip, err
}

func (r *tripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	return r.queryTrips(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY id`)
}

func (r *tripRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	return r.queryTrips(ctx, `SELECT `+tripColumns+` FROM trips WHERE user_id = $1 ORDER BY id`, ownerID)
}

func (r *tripRepository) ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error) {
	return r.queryTrips(ctx, `SELECT `+tripColumns+` FROM trips WHERE $1 = ANY(participants) ORDER BY id`, userID)
}

var tripFieldColumns = map[domain.TripField]string{
	domain.TripFieldName:        "name",
	domain.TripFieldDescription: "description",
	domain.TripFieldStartDate:   "start_date",
	domain.TripFieldEndDate:     "end_date",
}

func (r *tripRepository) UpdateField(ctx context.Context, id string, field domain.TripField, value any) error {
	column, ok := tripFieldColumns[field]
	if !ok {
		return domain.ErrValidation
	}
	query := `UPDATE trips SET ` + column + ` = $1 WHERE id = $2`
	logger.StoreCall("UPDATE", "trips", "tripID", id, "field", string(field))
	result, err := r.db.ExecContext(ctx, query, value, id)
	logger.StoreResult("UPDATE", err, "tripID", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *tripRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddParticipant appends userID in one guarded UPDATE. The WHERE clause
// makes the append atomic under concurrency: two simultaneous joins by
// different users each append their own id, and a duplicate join matches
// no row instead of appending twice.
func (r *tripRepository) AddParticipant(ctx context.Context, tripID, userID string) ([]string, error) {
	query := `UPDATE trips SET participants = array_append(participants, $2)
	          WHERE id = $1 AND NOT ($2 = ANY(participants))
	          RETURNING participants`
	var participants pq.StringArray
	err := r.db.QueryRowContext(ctx, query, tripID, userID).Scan(&participants)
	if errors.Is(err, sql.ErrNoRows) {
		// Trip absent, or the user is already a participant.
		return r.currentParticipants(ctx, tripID)
	}
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *tripRepository) RemoveParticipant(ctx context.Context, tripID, userID string) ([]string, error) {
	query := `UPDATE trips SET participants = array_remove(participants, $2)
	          WHERE id = $1
	          RETURNING participants`
	var participants pq.StringArray
	err := r.db.QueryRowContext(ctx, query, tripID, userID).Scan(&participants)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// Watch polls the trips table and emits a snapshot whenever it changes.
// PostgreSQL has no native change feed for this schema, so polling stands
// in for the document store's snapshot listener.
func (r *tripRepository) Watch(ctx context.Context) (repository.TripSubscription, error) {
	initial, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	sub := &pollSubscription{
		ch:     make(chan []domain.Trip, 16),
		cancel: cancel,
	}
	sub.ch <- initial

	go func() {
		defer close(sub.ch)
		ticker := time.NewTicker(r.watchInterval)
		defer ticker.Stop()
		last := initial
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
			}
			trips, err := r.List(watchCtx)
			if err != nil {
				logger.Warn("Trip watch poll failed", "error", err)
				continue
			}
			if reflect.DeepEqual(trips, last) {
				continue
			}
			last = trips
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
	var participants pq.StringArray
	err := r.db.QueryRowContext(ctx, `SELECT participants FROM trips WHERE id = $1`, tripID).Scan(&participants)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *tripRepository) queryTrips(ctx context.Context, query string, args ...any) ([]domain.Trip, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}
	return trips, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var (
		t            domain.Trip
		startDate    sql.NullTime
		endDate      sql.NullTime
		lat, lng     sql.NullFloat64
		participants pq.StringArray
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &startDate, &endDate, &lat, &lng, &participants, &t.OwnerID)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		sd := startDate.Time
		t.StartDate = &sd
	}
	if endDate.Valid {
		ed := endDate.Time
		t.EndDate = &ed
	}
	if lat.Valid {
		v := lat.Float64
		t.LocationLat = &v
	}
	if lng.Valid {
		v := lng.Float64
		t.LocationLng = &v
	}
	t.Participants = participants
	if t.Participants == nil {
		t.Participants = []string{}
	}
	return &t, nil
}

type pollSubscription struct {
	ch     chan []domain.Trip
	cancel context.CancelFunc
	once   sync.Once
}

func (s *pollSubscription) Updates() <-chan []domain.Trip { return s.ch }

func (s *pollSubscription) Cancel() {
	s.once.Do(s.cancel)
}
