package repository

import (
	"context"
	"fmt"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GuidesRelation eager-loads the guide users referenced by a tour.
var GuidesRelation = Relation{
	From:         "users",
	LocalField:   "guides",
	ForeignField: "_id",
	As:           "guide_details",
}

type TourRepository struct {
	*Resource[models.Tour]
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	// Secret tours are excluded from every read path at the storage
	// boundary, not by a schema hook.
	base := bson.M{"secret": bson.M{"$ne": true}}
	return &TourRepository{
		Resource: NewResource[models.Tour](db.Collection("tours"), base, "Tour not found"),
	}
}

// UpdateRatings persists a freshly computed aggregation pass over the
// tour's reviews. Last write wins under concurrent recomputation.
func (r *TourRepository) UpdateRatings(ctx context.Context, id primitive.ObjectID, average float64, quantity int64) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	result, err := r.Collection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"ratings_average":  average,
			"ratings_quantity": quantity,
			"updated_at":       time.Now(),
		},
	})
	if err != nil {
		return apperror.FromMongo(err, "Tour not found")
	}
	if result.MatchedCount == 0 {
		return apperror.New(apperror.NotFound, "Tour not found")
	}
	return nil
}

// DifficultyStats summarizes tours grouped by difficulty.
type DifficultyStats struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	TotalTours int64   `bson:"total_tours" json:"totalTours"`
	AvgRating  float64 `bson:"avg_rating" json:"avgRating"`
	AvgPrice   float64 `bson:"avg_price" json:"avgPrice"`
	MinPrice   float64 `bson:"min_price" json:"minPrice"`
	MaxPrice   float64 `bson:"max_price" json:"maxPrice"`
}

func (r *TourRepository) Stats(ctx context.Context) ([]DifficultyStats, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"secret": bson.M{"$ne": true}}},
		{"$group": bson.M{
			"_id":         "$difficulty",
			"total_tours": bson.M{"$sum": 1},
			"avg_rating":  bson.M{"$avg": "$ratings_average"},
			"avg_price":   bson.M{"$avg": "$price"},
			"min_price":   bson.M{"$min": "$price"},
			"max_price":   bson.M{"$max": "$price"},
		}},
		{"$sort": bson.M{"avg_price": -1}},
	}

	cursor, err := r.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperror.FromMongo(err, "Tour not found")
	}
	defer cursor.Close(ctx)

	var stats []DifficultyStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, apperror.FromMongo(err, "Tour not found")
	}
	return stats, nil
}

// MonthlyPlanEntry counts tour starts per month of a year.
type MonthlyPlanEntry struct {
	Month     int      `bson:"month" json:"month"`
	TourCount int64    `bson:"tour_count" json:"tourCount"`
	Tours     []string `bson:"tours" json:"tours"`
}

func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	from, err := time.Parse(time.RFC3339, fmt.Sprintf("%d-01-01T00:00:00Z", year))
	if err != nil {
		return nil, apperror.Wrap(apperror.InvalidParameter, "Invalid year", err)
	}
	to := from.AddDate(1, 0, 0)

	pipeline := []bson.M{
		{"$match": bson.M{"secret": bson.M{"$ne": true}}},
		{"$unwind": "$start_dates"},
		{"$match": bson.M{"start_dates": bson.M{"$gte": from, "$lt": to}}},
		{"$group": bson.M{
			"_id":        bson.M{"$month": "$start_dates"},
			"tour_count": bson.M{"$sum": 1},
			"tours":      bson.M{"$push": "$name"},
		}},
		{"$addFields": bson.M{"month": "$_id"}},
		{"$project": bson.M{"_id": 0}},
		{"$sort": bson.M{"month": 1}},
	}

	cursor, err := r.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperror.FromMongo(err, "Tour not found")
	}
	defer cursor.Close(ctx)

	var plan []MonthlyPlanEntry
	if err := cursor.All(ctx, &plan); err != nil {
		return nil, apperror.FromMongo(err, "Tour not found")
	}
	return plan, nil
}
