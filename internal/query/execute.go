package query

import (
	"context"

	"tours-backend/internal/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run executes the effective query against a collection. base is merged
// into the caller-supplied filter and always wins on conflicts; resources
// use it to pin invariants such as hiding secret documents.
//
// Projection and sort are applied before the count-dependent pagination
// step: the limit must be known before the page number can be validated
// against the resulting page count.
func Run[T any](ctx context.Context, coll *mongo.Collection, base bson.M, opts Options) (*Result[T], error) {
	filter := bson.M{}
	for k, v := range opts.Filter {
		filter[k] = v
	}
	for k, v := range base {
		filter[k] = v
	}

	findOpts := options.Find()
	if len(opts.Projection) > 0 {
		findOpts.SetProjection(opts.Projection)
	}
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, apperror.FromMongo(err, "No documents found")
	}

	totalPages, err := ValidatePage(opts.Page, count, opts.Limit)
	if err != nil {
		return nil, err
	}
	if skip := opts.Skip(); skip > 0 {
		findOpts.SetSkip(skip)
	}

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, apperror.FromMongo(err, "No documents found")
	}
	defer cursor.Close(ctx)

	data := []T{}
	if err := cursor.All(ctx, &data); err != nil {
		return nil, apperror.FromMongo(err, "No documents found")
	}

	return &Result[T]{
		CurrentPage: opts.Page,
		TotalPages:  totalPages,
		ResultCount: len(data),
		Data:        data,
	}, nil
}
