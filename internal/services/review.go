package services

import (
	"context"
	"log"
	"net/url"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"
	"tours-backend/internal/query"
	"tours-backend/internal/repository"
	"tours-backend/pkg/cache"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewService struct {
	reviewRepo   ReviewStore
	tourRepo     TourStore
	pageSize     int64
	validate     *validator.Validate
	cacheManager cache.Manager
}

func NewReviewService(reviewRepo ReviewStore, tourRepo TourStore, pageSize int64) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		tourRepo:   tourRepo,
		pageSize:   pageSize,
		validate:   validator.New(),
	}
}

// SetCacheManager enables tour cache invalidation after rating
// aggregation. Without it cached tours serve stale aggregates until TTL.
func (s *ReviewService) SetCacheManager(cacheManager cache.Manager) {
	s.cacheManager = cacheManager
}

// List runs the caller-shaped query over reviews. When tourID is given
// (nested route) the result is scoped to that tour regardless of any
// caller-supplied filter.
func (s *ReviewService) List(ctx context.Context, tourID string, values url.Values) (*query.Result[models.Review], error) {
	opts, err := query.Parse(values, s.pageSize)
	if err != nil {
		return nil, err
	}

	if tourID != "" {
		objectID, err := repository.ParseID(tourID)
		if err != nil {
			return nil, err
		}
		opts.Filter["tour_id"] = objectID
	}

	return s.reviewRepo.List(ctx, opts)
}

// Get returns a single review with its tour eagerly loaded.
func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	return s.reviewRepo.FindByID(ctx, id, repository.TourRelation)
}

// Create persists a review authored by the calling principal. The tour id
// comes from the request body when present, else from the route. The
// creation timestamp is always server-assigned.
func (s *ReviewService) Create(ctx context.Context, principal models.Principal, tourIDParam string, input map[string]interface{}) (*models.Review, error) {
	filtered := ReviewCreateWhitelist.FilterJSON(input)
	if _, ok := filtered["tourId"]; !ok && tourIDParam != "" {
		filtered["tourId"] = tourIDParam
	}

	tourIDRaw, ok := filtered["tourId"].(string)
	if !ok || tourIDRaw == "" {
		return nil, apperror.New(apperror.ValidationError, "Review must belong to a tour")
	}
	tourID, err := repository.ParseID(tourIDRaw)
	if err != nil {
		return nil, err
	}

	// The referenced tour must exist (and not be secret).
	if _, err := s.tourRepo.FindByID(ctx, tourIDRaw); err != nil {
		return nil, err
	}

	delete(filtered, "tourId")
	review, err := decodeInput[models.Review](filtered)
	if err != nil {
		return nil, err
	}
	review.TourID = tourID
	review.AuthorID = principal.ID

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	if err := s.validate.Struct(review); err != nil {
		return nil, apperror.Wrap(apperror.ValidationError, "Review failed validation", err)
	}

	created, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		return nil, err
	}

	s.recalculateTourRatings(ctx, tourID)
	return created, nil
}

// Update applies a whitelisted partial merge behind the ownership guard.
func (s *ReviewService) Update(ctx context.Context, principal models.Principal, id string, input map[string]interface{}) (*models.Review, error) {
	review, err := s.guard(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	set := ReviewUpdateWhitelist.FilterStored(input)
	if len(set) == 0 {
		return nil, apperror.New(apperror.ValidationError, "No updatable fields provided")
	}

	if rating, ok := set["rating"]; ok {
		value, numeric := toFloat(rating)
		if !numeric || value < 1 || value > 5 {
			return nil, apperror.New(apperror.ValidationError, "Rating must be between 1 and 5")
		}
	}

	updated, err := s.reviewRepo.UpdateByID(ctx, id, set)
	if err != nil {
		return nil, err
	}

	s.recalculateTourRatings(ctx, review.TourID)
	return updated, nil
}

// Delete removes a review behind the ownership guard.
func (s *ReviewService) Delete(ctx context.Context, principal models.Principal, id string) error {
	review, err := s.guard(ctx, principal, id)
	if err != nil {
		return err
	}

	if err := s.reviewRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.recalculateTourRatings(ctx, review.TourID)
	return nil
}

// guard loads the target review and allows the mutation only for its
// owner or an admin.
func (s *ReviewService) guard(ctx context.Context, principal models.Principal, id string) (*models.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !review.OwnedBy(principal.ID) && principal.Role != models.RoleAdmin {
		return nil, apperror.New(apperror.Forbidden, "You are not allowed to modify this review")
	}
	return review, nil
}

// recalculateTourRatings runs a single aggregation pass over the tour's
// reviews and persists the result. The mutation that triggered it has
// already succeeded, so a failed recomputation is logged rather than
// surfaced; the next mutation repairs the aggregates.
func (s *ReviewService) recalculateTourRatings(ctx context.Context, tourID primitive.ObjectID) {
	average, quantity, err := s.reviewRepo.AggregateRatings(ctx, tourID)
	if err != nil {
		log.Printf("rating aggregation for tour %s failed: %v", tourID.Hex(), err)
		return
	}

	if err := s.tourRepo.UpdateRatings(ctx, tourID, average, quantity); err != nil {
		log.Printf("rating update for tour %s failed: %v", tourID.Hex(), err)
		return
	}

	// Rating writes bypass TourService, so cached entries are dropped
	// here to keep them consistent with every other tour write path.
	if s.cacheManager != nil {
		if err := s.cacheManager.Delete("tour:" + tourID.Hex()); err != nil {
			log.Printf("tour cache invalidation failed: %v", err)
		}
		if err := s.cacheManager.InvalidateByTag(toursTag); err != nil {
			log.Printf("tour list cache invalidation failed: %v", err)
		}
	}
}
