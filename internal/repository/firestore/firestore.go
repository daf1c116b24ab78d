// Package firestore implements the repositories over Cloud Firestore, the
// document store the JoinMe app records live in. Collections and field
// names match the deployed schema: trips, notifications, users.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"joinme-backend/internal/repository"
)

const (
	tripsCollection         = "trips"
	notificationsCollection = "notifications"
	usersCollection         = "users"
)

// NewClient opens a Firestore client for the configured project. When
// credentialsFile is empty, application default credentials apply.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	conf := &firebase.Config{ProjectID: projectID}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, err
	}
	return app.Firestore(ctx)
}

// NewStore wires the Firestore repositories over one client.
func NewStore(client *firestore.Client) *repository.Store {
	return &repository.Store{
		Trips:         NewTripRepository(client),
		Notifications: NewNotificationRepository(client),
		Users:         NewUserRepository(client),
	}
}
