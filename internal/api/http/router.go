package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"joinme-backend/internal/api/middleware"
	"joinme-backend/internal/security"
	"joinme-backend/internal/service"
)

// NewRouter wires every API endpoint. Auth and health endpoints are
// public; everything else requires a bearer token.
func NewRouter(
	auth service.AuthService,
	trips service.TripService,
	notifications service.NotificationService,
	authenticator security.Authenticator,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	authHandler := NewAuthHandler(auth)
	router.HandleFunc("/api/v1/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")
	router.HandleFunc("/api/v1/auth/refresh", authHandler.Refresh).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Authenticate(authenticator))

	tripHandler := NewTripHandler(trips)
	api.HandleFunc("/trips", tripHandler.Create).Methods("POST")
	api.HandleFunc("/trips", tripHandler.Discover).Methods("GET")
	api.HandleFunc("/trips/watch", tripHandler.Watch).Methods("GET")
	api.HandleFunc("/trips/mine", tripHandler.Mine).Methods("GET")
	api.HandleFunc("/trips/joined", tripHandler.Joined).Methods("GET")
	api.HandleFunc("/trips/{id}", tripHandler.Get).Methods("GET")
	api.HandleFunc("/trips/{id}", tripHandler.Update).Methods("PATCH")
	api.HandleFunc("/trips/{id}", tripHandler.Delete).Methods("DELETE")
	api.HandleFunc("/trips/{id}/join", tripHandler.Join).Methods("POST")
	api.HandleFunc("/trips/{id}/leave", tripHandler.Leave).Methods("POST")

	notificationHandler := NewNotificationHandler(notifications)
	api.HandleFunc("/notifications", notificationHandler.List).Methods("GET")

	return router
}
