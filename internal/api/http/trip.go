package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"joinme-backend/internal/api/middleware"
	"joinme-backend/internal/domain"
	"joinme-backend/internal/service"
)

// TripHandler exposes trip creation, discovery, membership and editing.
type TripHandler struct {
	trips service.TripService
}

func NewTripHandler(trips service.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

type createTripRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	LocationLat *float64 `json:"locationLat"`
	LocationLng *float64 `json:"locationLng"`
}

type updateTripRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type participantsResponse struct {
	Participants []string `json:"participants"`
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, fmt.Errorf("%w: startDate: %v", domain.ErrValidation, err))
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, fmt.Errorf("%w: endDate: %v", domain.ErrValidation, err))
		return
	}

	trip, err := h.trips.CreateTrip(r.Context(), identity.UserID, domain.NewTrip{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		LocationLat: req.LocationLat,
		LocationLng: req.LocationLng,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// Discover lists trips the caller can join, optionally narrowed by the
// ?q= name filter.
func (h *TripHandler) Discover(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	trips, err := h.trips.ListDiscoverable(r.Context(), identity.UserID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// Watch streams live discovery listings as server-sent events. Each event
// carries the full filtered listing, so a dropped event is recovered by
// the next one.
func (h *TripHandler) Watch(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := h.trips.WatchDiscoverable(r.Context(), identity.UserID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case trips, open := <-sub.Updates():
			if !open {
				return
			}
			payload, err := json.Marshal(trips)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *TripHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	trips, err := h.trips.ListOwned(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) Joined(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	trips, err := h.trips.ListJoined(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.trips.GetTrip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// Update edits one field of a trip per request, mirroring the single-field
// edit flow of the client UI.
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	field := domain.TripField(req.Field)
	value, err := decodeFieldValue(field, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.trips.UpdateTripField(r.Context(), mux.Vars(r)["id"], field, value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	if err := h.trips.DeleteTrip(r.Context(), mux.Vars(r)["id"], identity.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *TripHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	participants, err := h.trips.JoinTrip(r.Context(), mux.Vars(r)["id"], identity.UserID, identity.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participantsResponse{Participants: participants})
}

func (h *TripHandler) Leave(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	participants, err := h.trips.LeaveTrip(r.Context(), mux.Vars(r)["id"], identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participantsResponse{Participants: participants})
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// decodeFieldValue turns the raw JSON value of a field edit into the type
// the service layer expects. Unknown fields pass through untouched so the
// service can reject them with its own validation error.
func decodeFieldValue(field domain.TripField, raw json.RawMessage) (any, error) {
	switch field {
	case domain.TripFieldName, domain.TripFieldDescription:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s must be a string", domain.ErrValidation, field)
		}
		return s, nil
	case domain.TripFieldStartDate, domain.TripFieldEndDate:
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s must be an RFC 3339 date or null", domain.ErrValidation, field)
		}
		t, err := parseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrValidation, field, err)
		}
		if t == nil {
			return nil, nil
		}
		return t, nil
	default:
		return raw, nil
	}
}
