package services

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"
	"tours-backend/internal/query"
	"tours-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryCache is a minimal in-process cache.Manager for exercising the
// read-through paths without redis.
type memoryCache struct {
	entries map[string][]byte
	tags    map[string][]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, tags: map[string][]string{}}
}

func (c *memoryCache) Get(key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(key string, value interface{}, ttl time.Duration, tags ...string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	for _, tag := range tags {
		c.tags[tag] = append(c.tags[tag], key)
	}
	return nil
}

func (c *memoryCache) Delete(key string) error {
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) InvalidateByTag(tag string) error {
	for _, key := range c.tags[tag] {
		delete(c.entries, key)
	}
	delete(c.tags, tag)
	return nil
}

func (c *memoryCache) Stats() cache.Stats { return cache.Stats{} }

func (c *memoryCache) HealthCheck() error { return nil }

func validTourInput() map[string]interface{} {
	return map[string]interface{}{
		"name":         "The Forest Hiker",
		"price":        497.0,
		"durationDays": 5,
		"difficulty":   "easy",
	}
}

func TestTourService_Create(t *testing.T) {
	t.Run("valid input persists with zeroed rating aggregates", func(t *testing.T) {
		tourRepo := new(MockTourStore)
		service := NewTourService(tourRepo, 15)

		tourRepo.On("Create", mock.Anything, mock.MatchedBy(func(tour *models.Tour) bool {
			return tour.Name == "The Forest Hiker" && tour.RatingsAverage == 0 && tour.RatingsQuantity == 0
		})).Return(&models.Tour{ID: primitive.NewObjectID(), Name: "The Forest Hiker"}, nil)

		created, err := service.Create(context.Background(), validTourInput())

		require.NoError(t, err)
		assert.Equal(t, "The Forest Hiker", created.Name)
		tourRepo.AssertExpectations(t)
	})

	t.Run("client-supplied rating aggregates are discarded", func(t *testing.T) {
		tourRepo := new(MockTourStore)
		service := NewTourService(tourRepo, 15)

		tourRepo.On("Create", mock.Anything, mock.MatchedBy(func(tour *models.Tour) bool {
			return tour.RatingsAverage == 0 && tour.RatingsQuantity == 0
		})).Return(&models.Tour{ID: primitive.NewObjectID()}, nil)

		input := validTourInput()
		input["ratingsAverage"] = 5.0
		input["ratingsQuantity"] = 9000

		_, err := service.Create(context.Background(), input)

		require.NoError(t, err)
		tourRepo.AssertExpectations(t)
	})

	t.Run("discount above price is rejected", func(t *testing.T) {
		tourRepo := new(MockTourStore)
		service := NewTourService(tourRepo, 15)

		input := validTourInput()
		input["priceDiscount"] = 600.0

		_, err := service.Create(context.Background(), input)

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
		tourRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing required fields", func(t *testing.T) {
		service := NewTourService(new(MockTourStore), 15)

		_, err := service.Create(context.Background(), map[string]interface{}{"name": "No price"})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
	})

	t.Run("unknown difficulty", func(t *testing.T) {
		service := NewTourService(new(MockTourStore), 15)

		input := validTourInput()
		input["difficulty"] = "impossible"

		_, err := service.Create(context.Background(), input)

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
	})
}

func TestTourService_Update_DiscountPair(t *testing.T) {
	id := primitive.NewObjectID()
	stored := &models.Tour{ID: id, Name: "The Forest Hiker", Price: 497, PriceDiscount: 50}

	cases := []struct {
		name       string
		input      map[string]interface{}
		needStored bool
		wantErr    bool
	}{
		{"both fields valid", map[string]interface{}{"price": 300.0, "priceDiscount": 100.0}, false, false},
		{"both fields invalid", map[string]interface{}{"price": 100.0, "priceDiscount": 300.0}, false, true},
		{"new discount against stored price ok", map[string]interface{}{"priceDiscount": 400.0}, true, false},
		{"new discount above stored price", map[string]interface{}{"priceDiscount": 500.0}, true, true},
		{"new price below stored discount", map[string]interface{}{"price": 40.0}, true, true},
		{"new price above stored discount ok", map[string]interface{}{"price": 60.0}, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tourRepo := new(MockTourStore)
			service := NewTourService(tourRepo, 15)

			if tc.needStored {
				tourRepo.On("FindByID", mock.Anything, id.Hex()).Return(stored, nil)
			}
			if !tc.wantErr {
				tourRepo.On("UpdateByID", mock.Anything, id.Hex(), mock.Anything).Return(stored, nil)
			}

			_, err := service.Update(context.Background(), id.Hex(), tc.input)

			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.Is(err, apperror.ValidationError))
				tourRepo.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTourService_Update(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("whitelist maps fields to stored names", func(t *testing.T) {
		tourRepo := new(MockTourStore)
		service := NewTourService(tourRepo, 15)

		tourRepo.On("UpdateByID", mock.Anything, id.Hex(), mock.MatchedBy(func(set bson.M) bool {
			_, hasGroupSize := set["max_group_size"]
			_, hasAggregates := set["ratings_average"]
			return hasGroupSize && !hasAggregates
		})).Return(&models.Tour{ID: id}, nil)

		_, err := service.Update(context.Background(), id.Hex(), map[string]interface{}{
			"maxGroupSize":   10,
			"ratingsAverage": 5.0,
		})

		require.NoError(t, err)
		tourRepo.AssertExpectations(t)
	})

	t.Run("empty update after whitelisting", func(t *testing.T) {
		service := NewTourService(new(MockTourStore), 15)

		_, err := service.Update(context.Background(), id.Hex(), map[string]interface{}{
			"ratingsAverage": 5.0,
		})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
	})

	t.Run("invalid difficulty on update", func(t *testing.T) {
		service := NewTourService(new(MockTourStore), 15)

		_, err := service.Update(context.Background(), id.Hex(), map[string]interface{}{
			"difficulty": "brutal",
		})

		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ValidationError))
	})
}

func TestTourService_TopFive(t *testing.T) {
	tourRepo := new(MockTourStore)
	service := NewTourService(tourRepo, 15)

	tourRepo.On("List", mock.Anything, mock.MatchedBy(func(opts query.Options) bool {
		if opts.Limit != 5 || len(opts.Sort) != 2 {
			return false
		}
		return opts.Sort[0].Key == "ratings_average" && opts.Sort[0].Value == -1 &&
			opts.Sort[1].Key == "price" && opts.Sort[1].Value == 1
	})).Return(&query.Result[models.Tour]{CurrentPage: 1, TotalPages: 1}, nil)

	_, err := service.TopFive(context.Background())

	require.NoError(t, err)
	tourRepo.AssertExpectations(t)
}

func TestTourService_Caching(t *testing.T) {
	t.Run("second read is served from cache", func(t *testing.T) {
		id := primitive.NewObjectID()
		tourRepo := new(MockTourStore)
		service := NewTourService(tourRepo, 15)
		service.SetCacheManager(newMemoryCache())

		tourRepo.On("FindByID", mock.Anything, id.Hex()).
			Return(&models.Tour{ID: id, Name: "Cached Tour"}, nil).Once()

		first, err := service.Get(context.Background(), id.Hex())
		require.NoError(t, err)

		second, err := service.Get(context.Background(), id.Hex())
		require.NoError(t, err)

		assert.Equal(t, first.Name, second.Name)
		tourRepo.AssertExpectations(t)
	})

	t.Run("write invalidates cached lists", func(t *testing.T) {
		id := primitive.NewObjectID()
		tourRepo := new(MockTourStore)
		service := NewTourService(tourRepo, 15)
		service.SetCacheManager(newMemoryCache())

		listResult := &query.Result[models.Tour]{CurrentPage: 1, TotalPages: 1, ResultCount: 1}
		tourRepo.On("List", mock.Anything, mock.Anything).Return(listResult, nil).Twice()
		tourRepo.On("UpdateByID", mock.Anything, id.Hex(), mock.Anything).Return(&models.Tour{ID: id}, nil)

		_, err := service.List(context.Background(), url.Values{})
		require.NoError(t, err)

		// Cached now; a second read must not hit the repo.
		_, err = service.List(context.Background(), url.Values{})
		require.NoError(t, err)

		_, err = service.Update(context.Background(), id.Hex(), map[string]interface{}{"summary": "changed"})
		require.NoError(t, err)

		_, err = service.List(context.Background(), url.Values{})
		require.NoError(t, err)

		tourRepo.AssertExpectations(t)
	})
}
