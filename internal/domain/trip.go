package domain

import (
	"fmt"
	"strings"
	"time"
)

// Trip is a shareable event record. Field names follow the persisted
// document schema of the trips collection.
type Trip struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	LocationLat  *float64   `json:"locationLat,omitempty"`
	LocationLng  *float64   `json:"locationLng,omitempty"`
	Participants []string   `json:"participants"`
	OwnerID      string     `json:"userId"`
}

// NewTrip carries the caller-supplied fields for trip creation.
type NewTrip struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	LocationLat *float64   `json:"locationLat,omitempty"`
	LocationLng *float64   `json:"locationLng,omitempty"`
}

// Validate checks creation input. The location is either a full
// (lat, lng) pair or absent entirely. Start/end ordering is deliberately
// not checked.
func (n *NewTrip) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: trip name must not be blank", ErrValidation)
	}
	if (n.LocationLat == nil) != (n.LocationLng == nil) {
		return fmt.Errorf("%w: location requires both latitude and longitude", ErrValidation)
	}
	return nil
}

// HasParticipant reports whether userID has joined the trip.
func (t *Trip) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsDiscoverableBy reports whether the trip shows up in userID's discovery
// listing: not their own, not already joined, and not already started.
func (t *Trip) IsDiscoverableBy(userID string, now time.Time) bool {
	if t.OwnerID == userID {
		return false
	}
	if t.HasParticipant(userID) {
		return false
	}
	if t.StartDate != nil && !t.StartDate.After(now) {
		return false
	}
	return true
}

// TripField names a mutable trip attribute.
type TripField string

const (
	TripFieldName        TripField = "name"
	TripFieldDescription TripField = "description"
	TripFieldStartDate   TripField = "startDate"
	TripFieldEndDate     TripField = "endDate"
)

// IsMutableTripField reports whether f is one of the fields that may be
// changed after creation. Owner and participants are mutated only through
// their dedicated operations.
func IsMutableTripField(f TripField) bool {
	switch f {
	case TripFieldName, TripFieldDescription, TripFieldStartDate, TripFieldEndDate:
		return true
	}
	return false
}
