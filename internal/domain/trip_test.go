package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64    { return &f }

func TestNewTripValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		n := NewTrip{Name: "Hiking in Tahoe"}
		assert.NoError(t, n.Validate())
	})

	t.Run("BlankName", func(t *testing.T) {
		n := NewTrip{Name: "   "}
		err := n.Validate()
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("PartialLocation", func(t *testing.T) {
		n := NewTrip{Name: "Beach", LocationLat: ptrFloat(36.6)}
		err := n.Validate()
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("FullLocation", func(t *testing.T) {
		n := NewTrip{Name: "Beach", LocationLat: ptrFloat(36.6), LocationLng: ptrFloat(-121.9)}
		assert.NoError(t, n.Validate())
	})
}

func TestTripIsDiscoverableBy(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trip := Trip{
		ID:           "t1",
		Name:         "Road trip",
		OwnerID:      "owner",
		Participants: []string{"alice"},
		StartDate:    ptrTime(now.Add(48 * time.Hour)),
	}

	t.Run("VisibleToStranger", func(t *testing.T) {
		assert.True(t, trip.IsDiscoverableBy("bob", now))
	})

	t.Run("HiddenFromOwner", func(t *testing.T) {
		assert.False(t, trip.IsDiscoverableBy("owner", now))
	})

	t.Run("HiddenFromParticipant", func(t *testing.T) {
		assert.False(t, trip.IsDiscoverableBy("alice", now))
	})

	t.Run("HiddenOnceStarted", func(t *testing.T) {
		started := trip
		started.StartDate = ptrTime(now.Add(-time.Hour))
		assert.False(t, started.IsDiscoverableBy("bob", now))
	})

	t.Run("HiddenAtExactStart", func(t *testing.T) {
		started := trip
		started.StartDate = ptrTime(now)
		assert.False(t, started.IsDiscoverableBy("bob", now))
	})

	t.Run("VisibleWithoutStartDate", func(t *testing.T) {
		open := trip
		open.StartDate = nil
		assert.True(t, open.IsDiscoverableBy("bob", now))
	})
}

func TestIsMutableTripField(t *testing.T) {
	assert.True(t, IsMutableTripField(TripFieldName))
	assert.True(t, IsMutableTripField(TripFieldDescription))
	assert.True(t, IsMutableTripField(TripFieldStartDate))
	assert.True(t, IsMutableTripField(TripFieldEndDate))
	assert.False(t, IsMutableTripField(TripField("participants")))
	assert.False(t, IsMutableTripField(TripField("userId")))
	assert.False(t, IsMutableTripField(TripField("id")))
}
