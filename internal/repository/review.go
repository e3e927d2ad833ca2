package repository

import (
	"context"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TourRelation eager-loads the tour a review belongs to.
var TourRelation = Relation{
	From:         "tours",
	LocalField:   "tour_id",
	ForeignField: "_id",
	As:           "tour_details",
	Single:       true,
}

type ReviewRepository struct {
	*Resource[models.Review]
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		Resource: NewResource[models.Review](db.Collection("reviews"), nil, "Review not found"),
	}
}

// AggregateRatings computes the mean rating and review count for a tour
// in a single aggregation pass. A tour with no reviews yields (0, 0).
func (r *ReviewRepository) AggregateRatings(ctx context.Context, tourID primitive.ObjectID) (float64, int64, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"tour_id": tourID}},
		{"$group": bson.M{
			"_id":        "$tour_id",
			"avg_rating": bson.M{"$avg": "$rating"},
			"quantity":   bson.M{"$sum": 1},
		}},
	}

	cursor, err := r.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, apperror.FromMongo(err, "Review not found")
	}
	defer cursor.Close(ctx)

	var result struct {
		AvgRating float64 `bson:"avg_rating"`
		Quantity  int64   `bson:"quantity"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, 0, apperror.FromMongo(err, "Review not found")
		}
	}
	return result.AvgRating, result.Quantity, nil
}
