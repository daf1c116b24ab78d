package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"joinme-backend/internal/domain"
)

func newTripFixture() (*MockTripRepo, *MockUserRepo, *MockNotifier, TripService) {
	tripRepo := new(MockTripRepo)
	userRepo := new(MockUserRepo)
	notifier := new(MockNotifier)
	svc := NewTripService(tripRepo, userRepo, notifier)
	return tripRepo, userRepo, notifier, svc
}

func future(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestCreateTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("Create", ctx, mock.AnythingOfType("*domain.Trip")).Return(nil)

		trip, err := svc.CreateTrip(ctx, "owner", domain.NewTrip{Name: "Camping"})
		require.NoError(t, err)
		assert.Equal(t, "owner", trip.OwnerID)
		assert.NotNil(t, trip.Participants)
		assert.Empty(t, trip.Participants, "new trips start with no participants")
		tripRepo.AssertExpectations(t)
	})

	t.Run("BlankNameRejected", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()

		_, err := svc.CreateTrip(ctx, "owner", domain.NewTrip{Name: "  "})
		assert.ErrorIs(t, err, domain.ErrValidation)
		tripRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("StoreFailureSurfaces", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("Create", ctx, mock.Anything).Return(errors.New("write failed"))

		_, err := svc.CreateTrip(ctx, "owner", domain.NewTrip{Name: "Camping"})
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestListDiscoverable(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesVisibilityAndFilter", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("List", ctx).Return([]domain.Trip{
			{ID: "own", Name: "Tahoe hike", OwnerID: "me"},
			{ID: "joined", Name: "Tahoe ski", OwnerID: "other", Participants: []string{"me"}},
			{ID: "started", Name: "Tahoe camp", OwnerID: "other", StartDate: future(-time.Hour)},
			{ID: "visible", Name: "Tahoe float", OwnerID: "other", StartDate: future(time.Hour)},
			{ID: "filtered", Name: "Desert drive", OwnerID: "other"},
		}, nil)

		trips, err := svc.ListDiscoverable(ctx, "me", "tahoe")
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, "visible", trips[0].ID)
	})

	t.Run("StoreFailureYieldsEmptyListing", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("List", ctx).Return(nil, errors.New("store down"))

		trips, err := svc.ListDiscoverable(ctx, "me", "")
		assert.NoError(t, err)
		assert.Empty(t, trips)
	})
}

func TestJoinTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("JoinsAndNotifiesOwner", func(t *testing.T) {
		tripRepo, _, notifier, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{
			ID: "t1", Name: "Camping", OwnerID: "owner", Participants: []string{},
		}, nil)
		tripRepo.On("AddParticipant", ctx, "t1", "bob").Return([]string{"bob"}, nil)
		notifier.On("NotifyOwner", ctx, "owner", "Bob joined Camping").Return(nil)

		participants, err := svc.JoinTrip(ctx, "t1", "bob", "Bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, participants)
		notifier.AssertExpectations(t)
	})

	t.Run("OwnerCannotJoinOwnTrip", func(t *testing.T) {
		tripRepo, _, notifier, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{
			ID: "t1", Name: "Camping", OwnerID: "owner", Participants: []string{},
		}, nil)

		_, err := svc.JoinTrip(ctx, "t1", "owner", "Owner")
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
		tripRepo.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "NotifyOwner", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DuplicateJoinIsSilentNoOp", func(t *testing.T) {
		tripRepo, _, notifier, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{
			ID: "t1", Name: "Camping", OwnerID: "owner", Participants: []string{"bob"},
		}, nil)

		participants, err := svc.JoinTrip(ctx, "t1", "bob", "Bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, participants)
		tripRepo.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "NotifyOwner", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ResolvesUsernameWhenActorNameMissing", func(t *testing.T) {
		tripRepo, userRepo, notifier, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{
			ID: "t1", Name: "Camping", OwnerID: "owner", Participants: []string{},
		}, nil)
		tripRepo.On("AddParticipant", ctx, "t1", "bob").Return([]string{"bob"}, nil)
		userRepo.On("GetByID", ctx, "bob").Return(&domain.User{ID: "bob", Username: "bobby"}, nil)
		notifier.On("NotifyOwner", ctx, "owner", "bobby joined Camping").Return(nil)

		_, err := svc.JoinTrip(ctx, "t1", "bob", "")
		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("UnresolvableUsernameFallsBack", func(t *testing.T) {
		tripRepo, userRepo, notifier, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{
			ID: "t1", Name: "Camping", OwnerID: "owner", Participants: []string{},
		}, nil)
		tripRepo.On("AddParticipant", ctx, "t1", "ghost").Return([]string{"ghost"}, nil)
		userRepo.On("GetByID", ctx, "ghost").Return(nil, domain.ErrNotFound)
		notifier.On("NotifyOwner", ctx, "owner", "unknown joined Camping").Return(nil)

		_, err := svc.JoinTrip(ctx, "t1", "ghost", "")
		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("NotificationFailureDoesNotUndoJoin", func(t *testing.T) {
		tripRepo, _, notifier, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{
			ID: "t1", Name: "Camping", OwnerID: "owner", Participants: []string{},
		}, nil)
		tripRepo.On("AddParticipant", ctx, "t1", "bob").Return([]string{"bob"}, nil)
		notifier.On("NotifyOwner", ctx, "owner", mock.Anything).Return(errors.New("notify failed"))

		participants, err := svc.JoinTrip(ctx, "t1", "bob", "Bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, participants)
	})

	t.Run("MissingTrip", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "gone").Return(nil, domain.ErrNotFound)

		_, err := svc.JoinTrip(ctx, "gone", "bob", "Bob")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLeaveTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("LeavesWithoutNotifying", func(t *testing.T) {
		tripRepo, _, notifier, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{
			ID: "t1", Name: "Camping", OwnerID: "owner", Participants: []string{"bob", "carol"},
		}, nil)
		tripRepo.On("RemoveParticipant", ctx, "t1", "bob").Return([]string{"carol"}, nil)

		participants, err := svc.LeaveTrip(ctx, "t1", "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"carol"}, participants)
		notifier.AssertNotCalled(t, "NotifyOwner", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LeavingUnjoinedTripIsNoOp", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{
			ID: "t1", Name: "Camping", OwnerID: "owner", Participants: []string{"carol"},
		}, nil)

		participants, err := svc.LeaveTrip(ctx, "t1", "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"carol"}, participants)
		tripRepo.AssertNotCalled(t, "RemoveParticipant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerDeletes", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{ID: "t1", OwnerID: "owner"}, nil)
		tripRepo.On("Delete", ctx, "t1").Return(nil)

		assert.NoError(t, svc.DeleteTrip(ctx, "t1", "owner"))
	})

	t.Run("NonOwnerDenied", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("GetByID", ctx, "t1").Return(&domain.Trip{ID: "t1", OwnerID: "owner"}, nil)

		err := svc.DeleteTrip(ctx, "t1", "bob")
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
		tripRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUpdateTripField(t *testing.T) {
	ctx := context.Background()

	t.Run("EditsName", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("UpdateField", ctx, "t1", domain.TripFieldName, "New name").Return(nil)

		assert.NoError(t, svc.UpdateTripField(ctx, "t1", domain.TripFieldName, "New name"))
	})

	t.Run("BlankNameRejected", func(t *testing.T) {
		_, _, _, svc := newTripFixture()

		err := svc.UpdateTripField(ctx, "t1", domain.TripFieldName, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("ImmutableFieldRejected", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()

		err := svc.UpdateTripField(ctx, "t1", domain.TripField("participants"), []string{"x"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		tripRepo.AssertNotCalled(t, "UpdateField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ClearsStartDate", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("UpdateField", ctx, "t1", domain.TripFieldStartDate, nil).Return(nil)

		assert.NoError(t, svc.UpdateTripField(ctx, "t1", domain.TripFieldStartDate, nil))
	})
}

func TestListJoined(t *testing.T) {
	ctx := context.Background()

	t.Run("ExcludesOwnTrips", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("ListByParticipant", ctx, "me").Return([]domain.Trip{
			{ID: "other", OwnerID: "someone", Participants: []string{"me"}},
			{ID: "mine", OwnerID: "me", Participants: []string{"me"}},
		}, nil)

		trips, err := svc.ListJoined(ctx, "me")
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, "other", trips[0].ID)
	})

	t.Run("StoreFailureYieldsEmptyListing", func(t *testing.T) {
		tripRepo, _, _, svc := newTripFixture()
		tripRepo.On("ListByParticipant", ctx, "me").Return(nil, errors.New("store down"))

		trips, err := svc.ListJoined(ctx, "me")
		assert.NoError(t, err)
		assert.Empty(t, trips)
	})
}

func TestResolveUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("KnownUser", func(t *testing.T) {
		_, userRepo, _, svc := newTripFixture()
		userRepo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Username: "alice"}, nil)

		assert.Equal(t, "alice", svc.ResolveUsername(ctx, "u1"))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, userRepo, _, svc := newTripFixture()
		userRepo.On("GetByID", ctx, "ghost").Return(nil, domain.ErrNotFound)

		assert.Equal(t, UnknownUsername, svc.ResolveUsername(ctx, "ghost"))
	})

	t.Run("BlankUsernameFallsBack", func(t *testing.T) {
		_, userRepo, _, svc := newTripFixture()
		userRepo.On("GetByID", ctx, "u2").Return(&domain.User{ID: "u2"}, nil)

		assert.Equal(t, UnknownUsername, svc.ResolveUsername(ctx, "u2"))
	})
}
