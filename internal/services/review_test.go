package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"
	"tours-backend/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func principalWithRole(role string) models.Principal {
	return models.Principal{ID: primitive.NewObjectID(), Name: "Test", Role: role, Active: true}
}

func TestReviewService_Create(t *testing.T) {
	tourID := primitive.NewObjectID()
	author := principalWithRole(models.RoleUser)

	t.Run("tour id from the body wins over the route", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		bodyTourID := primitive.NewObjectID()
		tourRepo.On("FindByID", mock.Anything, bodyTourID.Hex()).Return(&models.Tour{ID: bodyTourID}, nil)
		reviewRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
			return r.TourID == bodyTourID && r.AuthorID == author.ID && !r.CreatedAt.IsZero()
		})).Return(&models.Review{ID: primitive.NewObjectID(), TourID: bodyTourID, AuthorID: author.ID, Rating: 4}, nil)
		reviewRepo.On("AggregateRatings", mock.Anything, bodyTourID).Return(4.0, int64(1), nil)
		tourRepo.On("UpdateRatings", mock.Anything, bodyTourID, 4.0, int64(1)).Return(nil)

		created, err := service.Create(context.Background(), author, tourID.Hex(), map[string]interface{}{
			"tourId": bodyTourID.Hex(),
			"rating": 4,
		})

		require.NoError(t, err)
		assert.Equal(t, bodyTourID, created.TourID)
		tourRepo.AssertExpectations(t)
	})

	t.Run("route param fills in a missing body tour id", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		tourRepo.On("FindByID", mock.Anything, tourID.Hex()).Return(&models.Tour{ID: tourID}, nil)
		reviewRepo.On("Create", mock.Anything, mock.Anything).
			Return(&models.Review{ID: primitive.NewObjectID(), TourID: tourID, AuthorID: author.ID, Rating: 5}, nil)
		reviewRepo.On("AggregateRatings", mock.Anything, tourID).Return(5.0, int64(1), nil)
		tourRepo.On("UpdateRatings", mock.Anything, tourID, 5.0, int64(1)).Return(nil)

		_, err := service.Create(context.Background(), author, tourID.Hex(), map[string]interface{}{
			"rating": 5,
			"text":   "Great trip",
		})

		require.NoError(t, err)
	})

	t.Run("missing tour id everywhere", func(t *testing.T) {
		service := NewReviewService(new(MockReviewStore), new(MockTourStore), 15)

		_, err := service.Create(context.Background(), author, "", map[string]interface{}{"rating": 3})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
	})

	t.Run("tour must exist", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		tourRepo.On("FindByID", mock.Anything, tourID.Hex()).
			Return(nil, apperror.New(apperror.NotFound, "Tour not found"))

		_, err := service.Create(context.Background(), author, tourID.Hex(), map[string]interface{}{"rating": 3})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.NotFound))
		reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("client-supplied author id is ignored", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		tourRepo.On("FindByID", mock.Anything, tourID.Hex()).Return(&models.Tour{ID: tourID}, nil)
		reviewRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
			return r.AuthorID == author.ID
		})).Return(&models.Review{ID: primitive.NewObjectID(), TourID: tourID, AuthorID: author.ID, Rating: 3}, nil)
		reviewRepo.On("AggregateRatings", mock.Anything, tourID).Return(3.0, int64(1), nil)
		tourRepo.On("UpdateRatings", mock.Anything, tourID, 3.0, int64(1)).Return(nil)

		_, err := service.Create(context.Background(), author, tourID.Hex(), map[string]interface{}{
			"rating":   3,
			"authorId": primitive.NewObjectID().Hex(),
		})

		require.NoError(t, err)
		reviewRepo.AssertExpectations(t)
	})

	t.Run("rating out of bounds fails validation", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		tourRepo.On("FindByID", mock.Anything, tourID.Hex()).Return(&models.Tour{ID: tourID}, nil)

		_, err := service.Create(context.Background(), author, tourID.Hex(), map[string]interface{}{"rating": 6})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
		reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestReviewService_OwnershipGuard(t *testing.T) {
	tourID := primitive.NewObjectID()
	owner := principalWithRole(models.RoleUser)
	review := &models.Review{
		ID:       primitive.NewObjectID(),
		TourID:   tourID,
		AuthorID: owner.ID,
		Rating:   4,
	}

	cases := []struct {
		name      string
		principal models.Principal
		allowed   bool
	}{
		{"owner may modify", owner, true},
		{"admin may modify", principalWithRole(models.RoleAdmin), true},
		{"other user may not", principalWithRole(models.RoleUser), false},
		{"guide may not", principalWithRole(models.RoleGuide), false},
		{"lead guide may not", principalWithRole(models.RoleLeadGuide), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reviewRepo := new(MockReviewStore)
			tourRepo := new(MockTourStore)
			service := NewReviewService(reviewRepo, tourRepo, 15)

			reviewRepo.On("FindByID", mock.Anything, review.ID.Hex()).Return(review, nil)
			if tc.allowed {
				reviewRepo.On("DeleteByID", mock.Anything, review.ID.Hex()).Return(nil)
				reviewRepo.On("AggregateRatings", mock.Anything, tourID).Return(0.0, int64(0), nil)
				tourRepo.On("UpdateRatings", mock.Anything, tourID, 0.0, int64(0)).Return(nil)
			}

			err := service.Delete(context.Background(), tc.principal, review.ID.Hex())

			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, apperror.Is(err, apperror.Forbidden))
				reviewRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestReviewService_Update(t *testing.T) {
	tourID := primitive.NewObjectID()
	owner := principalWithRole(models.RoleUser)
	review := &models.Review{ID: primitive.NewObjectID(), TourID: tourID, AuthorID: owner.ID, Rating: 4}

	t.Run("non-whitelisted fields are dropped", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		reviewRepo.On("FindByID", mock.Anything, review.ID.Hex()).Return(review, nil)

		_, err := service.Update(context.Background(), owner, review.ID.Hex(), map[string]interface{}{
			"authorId": primitive.NewObjectID().Hex(),
			"tourId":   primitive.NewObjectID().Hex(),
		})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
		reviewRepo.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rating bounds are enforced", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		service := NewReviewService(reviewRepo, new(MockTourStore), 15)

		reviewRepo.On("FindByID", mock.Anything, review.ID.Hex()).Return(review, nil)

		_, err := service.Update(context.Background(), owner, review.ID.Hex(), map[string]interface{}{"rating": 0.5})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
	})

	t.Run("successful update recomputes the tour aggregates", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		updated := &models.Review{ID: review.ID, TourID: tourID, AuthorID: owner.ID, Rating: 2}
		reviewRepo.On("FindByID", mock.Anything, review.ID.Hex()).Return(review, nil)
		reviewRepo.On("UpdateByID", mock.Anything, review.ID.Hex(), mock.Anything).Return(updated, nil)
		reviewRepo.On("AggregateRatings", mock.Anything, tourID).Return(3.0, int64(2), nil)
		tourRepo.On("UpdateRatings", mock.Anything, tourID, 3.0, int64(2)).Return(nil)

		got, err := service.Update(context.Background(), owner, review.ID.Hex(), map[string]interface{}{"rating": 2})

		require.NoError(t, err)
		assert.Equal(t, 2.0, got.Rating)
		tourRepo.AssertExpectations(t)
	})

	t.Run("recomputed aggregates drop cached tour entries", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		cacheManager := newMemoryCache()
		service.SetCacheManager(cacheManager)
		require.NoError(t, cacheManager.Set("tour:"+tourID.Hex(), "cached tour", time.Minute))
		require.NoError(t, cacheManager.Set("tour_list:all", "cached list", time.Minute, toursTag))

		updated := &models.Review{ID: review.ID, TourID: tourID, AuthorID: owner.ID, Rating: 2}
		reviewRepo.On("FindByID", mock.Anything, review.ID.Hex()).Return(review, nil)
		reviewRepo.On("UpdateByID", mock.Anything, review.ID.Hex(), mock.Anything).Return(updated, nil)
		reviewRepo.On("AggregateRatings", mock.Anything, tourID).Return(3.0, int64(2), nil)
		tourRepo.On("UpdateRatings", mock.Anything, tourID, 3.0, int64(2)).Return(nil)

		_, err := service.Update(context.Background(), owner, review.ID.Hex(), map[string]interface{}{"rating": 2})
		require.NoError(t, err)

		var dest string
		found, err := cacheManager.Get("tour:"+tourID.Hex(), &dest)
		require.NoError(t, err)
		assert.False(t, found, "cached tour should be invalidated")

		found, err = cacheManager.Get("tour_list:all", &dest)
		require.NoError(t, err)
		assert.False(t, found, "cached tour list should be invalidated")
	})

	t.Run("aggregation failure does not fail the mutation", func(t *testing.T) {
		reviewRepo := new(MockReviewStore)
		tourRepo := new(MockTourStore)
		service := NewReviewService(reviewRepo, tourRepo, 15)

		updated := &models.Review{ID: review.ID, TourID: tourID, AuthorID: owner.ID, Rating: 2}
		reviewRepo.On("FindByID", mock.Anything, review.ID.Hex()).Return(review, nil)
		reviewRepo.On("UpdateByID", mock.Anything, review.ID.Hex(), mock.Anything).Return(updated, nil)
		reviewRepo.On("AggregateRatings", mock.Anything, tourID).
			Return(0.0, int64(0), apperror.New(apperror.Internal, "aggregation failed"))

		_, err := service.Update(context.Background(), owner, review.ID.Hex(), map[string]interface{}{"rating": 2})

		require.NoError(t, err)
		tourRepo.AssertNotCalled(t, "UpdateRatings", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReviewService_List(t *testing.T) {
	t.Run("nested route scopes the filter to the tour", func(t *testing.T) {
		tourID := primitive.NewObjectID()
		reviewRepo := new(MockReviewStore)
		service := NewReviewService(reviewRepo, new(MockTourStore), 15)

		reviewRepo.On("List", mock.Anything, mock.MatchedBy(func(opts query.Options) bool {
			return opts.Filter["tour_id"] == tourID
		})).Return(&query.Result[models.Review]{CurrentPage: 1, TotalPages: 1}, nil)

		_, err := service.List(context.Background(), tourID.Hex(), url.Values{})

		require.NoError(t, err)
		reviewRepo.AssertExpectations(t)
	})

	t.Run("malformed tour id", func(t *testing.T) {
		service := NewReviewService(new(MockReviewStore), new(MockTourStore), 15)

		_, err := service.List(context.Background(), "not-an-id", url.Values{})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.InvalidParameter))
	})
}
