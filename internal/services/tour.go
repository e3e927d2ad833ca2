package services

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"
	"tours-backend/internal/query"
	"tours-backend/internal/repository"
	"tours-backend/pkg/cache"

	"github.com/go-playground/validator/v10"
)

// toursTag groups every cached list/aggregation key so a single write
// invalidates all derived reads.
const toursTag = "tours"

type TourService struct {
	tourRepo     TourStore
	pageSize     int64
	validate     *validator.Validate
	cacheManager cache.Manager
	cacheConfig  cache.Config
}

func NewTourService(tourRepo TourStore, pageSize int64) *TourService {
	return &TourService{
		tourRepo:    tourRepo,
		pageSize:    pageSize,
		validate:    validator.New(),
		cacheConfig: cache.DefaultConfig(),
	}
}

// SetCacheManager enables the read-through cache for tour reads.
func (s *TourService) SetCacheManager(cacheManager cache.Manager) {
	s.cacheManager = cacheManager
}

// List runs the caller-shaped query over non-secret tours.
func (s *TourService) List(ctx context.Context, values url.Values) (*query.Result[models.Tour], error) {
	opts, err := query.Parse(values, s.pageSize)
	if err != nil {
		return nil, err
	}

	cacheKey := "tour_list:" + values.Encode()
	if s.cacheManager != nil {
		var cached query.Result[models.Tour]
		if found, err := s.cacheManager.Get(cacheKey, &cached); err == nil && found {
			return &cached, nil
		} else if err != nil {
			log.Printf("tour list cache read failed: %v", err)
		}
	}

	result, err := s.tourRepo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.TTLFor("tour_list")
		if err := s.cacheManager.Set(cacheKey, result, ttl, toursTag); err != nil {
			log.Printf("tour list cache write failed: %v", err)
		}
	}
	return result, nil
}

// TopFive is the curated alias listing: the five best-rated tours,
// cheapest first among equals.
func (s *TourService) TopFive(ctx context.Context) (*query.Result[models.Tour], error) {
	values := url.Values{}
	values.Set("limit", "5")
	values.Set("sort", "-ratings_average,price")
	return s.List(ctx, values)
}

// Get returns a single tour with its guides eagerly loaded.
func (s *TourService) Get(ctx context.Context, id string) (*models.Tour, error) {
	cacheKey := "tour:" + id
	if s.cacheManager != nil {
		var cached models.Tour
		if found, err := s.cacheManager.Get(cacheKey, &cached); err == nil && found {
			return &cached, nil
		} else if err != nil {
			log.Printf("tour cache read failed: %v", err)
		}
	}

	tour, err := s.tourRepo.FindByID(ctx, id, repository.GuidesRelation)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.TTLFor("tour")
		if err := s.cacheManager.Set(cacheKey, tour, ttl, toursTag); err != nil {
			log.Printf("tour cache write failed: %v", err)
		}
	}
	return tour, nil
}

// Create persists a new tour from whitelisted input.
func (s *TourService) Create(ctx context.Context, input map[string]interface{}) (*models.Tour, error) {
	tour, err := decodeInput[models.Tour](TourWhitelist.FilterJSON(input))
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(tour); err != nil {
		return nil, apperror.Wrap(apperror.ValidationError, "Tour failed validation", err)
	}
	if !tour.DiscountValid() {
		return nil, apperror.New(apperror.ValidationError, "Price discount cannot exceed the price")
	}

	now := time.Now()
	tour.RatingsAverage = 0
	tour.RatingsQuantity = 0
	tour.CreatedAt = now
	tour.UpdatedAt = now

	created, err := s.tourRepo.Create(ctx, tour)
	if err != nil {
		return nil, err
	}
	s.invalidateCache("")
	return created, nil
}

// Update applies a whitelisted partial merge. The price/discount pair is
// validated even when only one side changes: the missing half is taken
// from the stored document.
func (s *TourService) Update(ctx context.Context, id string, input map[string]interface{}) (*models.Tour, error) {
	set := TourWhitelist.FilterStored(input)
	if len(set) == 0 {
		return nil, apperror.New(apperror.ValidationError, "No updatable fields provided")
	}

	if err := s.checkDiscountPair(ctx, id, set); err != nil {
		return nil, err
	}

	if difficulty, ok := set["difficulty"]; ok {
		if err := s.validate.Var(difficulty, "oneof=easy medium difficult"); err != nil {
			return nil, apperror.New(apperror.ValidationError, "Difficulty must be one of: easy, medium, difficult")
		}
	}

	updated, err := s.tourRepo.UpdateByID(ctx, id, set)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(id)
	return updated, nil
}

func (s *TourService) Delete(ctx context.Context, id string) error {
	if err := s.tourRepo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(id)
	return nil
}

func (s *TourService) Stats(ctx context.Context) ([]repository.DifficultyStats, error) {
	cacheKey := "tour_stats"
	if s.cacheManager != nil {
		var cached []repository.DifficultyStats
		if found, err := s.cacheManager.Get(cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	stats, err := s.tourRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.TTLFor("stats")
		if err := s.cacheManager.Set(cacheKey, stats, ttl, toursTag); err != nil {
			log.Printf("tour stats cache write failed: %v", err)
		}
	}
	return stats, nil
}

func (s *TourService) MonthlyPlan(ctx context.Context, year int) ([]repository.MonthlyPlanEntry, error) {
	return s.tourRepo.MonthlyPlan(ctx, year)
}

// checkDiscountPair enforces priceDiscount <= price across partial
// updates. When only one of the two fields is in the update, the other is
// fetched from the stored document to validate the pair.
func (s *TourService) checkDiscountPair(ctx context.Context, id string, set map[string]interface{}) error {
	priceVal, hasPrice := set["price"]
	discountVal, hasDiscount := set["price_discount"]
	if !hasPrice && !hasDiscount {
		return nil
	}

	price, discount := 0.0, 0.0
	priceOK, discountOK := false, false
	if hasPrice {
		price, priceOK = toFloat(priceVal)
		if !priceOK {
			return apperror.New(apperror.ValidationError, "Price must be a number")
		}
	}
	if hasDiscount {
		discount, discountOK = toFloat(discountVal)
		if !discountOK {
			return apperror.New(apperror.ValidationError, "Price discount must be a number")
		}
	}

	if !hasPrice || !hasDiscount {
		stored, err := s.tourRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !hasPrice {
			price = stored.Price
		}
		if !hasDiscount {
			discount = stored.PriceDiscount
		}
	}

	if discount > price {
		return apperror.New(apperror.ValidationError, "Price discount cannot exceed the price")
	}
	return nil
}

func (s *TourService) invalidateCache(id string) {
	if s.cacheManager == nil {
		return
	}
	if id != "" {
		if err := s.cacheManager.Delete("tour:" + id); err != nil {
			log.Printf("tour cache invalidation failed: %v", err)
		}
	}
	if err := s.cacheManager.InvalidateByTag(toursTag); err != nil {
		log.Printf("tour list cache invalidation failed: %v", err)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// decodeInput converts a whitelisted JSON-shaped map into a typed model.
func decodeInput[T any](input map[string]interface{}) (*T, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, apperror.Wrap(apperror.ValidationError, "Invalid request body", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperror.Wrap(apperror.ValidationError, "Invalid request body", err)
	}
	return &out, nil
}
