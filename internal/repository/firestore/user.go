package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"joinme-backend/internal/domain"
	"joinme-backend/internal/repository"
)

type userRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) repository.UserRepository {
	return &userRepository{client: client}
}

type userDoc struct {
	Email        string `firestore:"email"`
	Username     string `firestore:"username"`
	PasswordHash string `firestore:"passwordHash,omitempty"`
}

func (r *userRepository) users() *firestore.CollectionRef {
	return r.client.Collection(usersCollection)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	ref := r.users().NewDoc()
	if user.ID != "" {
		ref = r.users().Doc(user.ID)
	}
	_, err := ref.Set(ctx, userDoc{
		Email:        user.Email,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		return err
	}
	user.ID = ref.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	snap, err := r.users().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return userFromSnapshot(snap)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	docs := r.users().Where("email", "==", email).Limit(1).Documents(ctx)
	defer docs.Stop()
	snap, err := docs.Next()
	if err == iterator.Done {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return userFromSnapshot(snap)
}

func userFromSnapshot(snap *firestore.DocumentSnapshot) (*domain.User, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           snap.Ref.ID,
		Email:        doc.Email,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
	}, nil
}
