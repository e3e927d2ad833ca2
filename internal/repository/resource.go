package repository

import (
	"context"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const operationTimeout = 10 * time.Second

// Relation declares an eager-loaded association for read operations. Reads
// enumerate explicitly which relations they may attach; there is no
// populate-by-name mechanism.
type Relation struct {
	From         string // foreign collection name
	LocalField   string
	ForeignField string
	As           string // field the loaded documents are attached to
	Single       bool   // unwind to a single embedded document
}

// Resource provides uniform persistence semantics over any entity type.
// base is merged into every read filter; resources use it to pin
// invariants (e.g. hiding secret tours) at the storage boundary.
type Resource[T any] struct {
	coll        *mongo.Collection
	base        bson.M
	notFoundMsg string
}

func NewResource[T any](coll *mongo.Collection, base bson.M, notFoundMsg string) *Resource[T] {
	if base == nil {
		base = bson.M{}
	}
	return &Resource[T]{coll: coll, base: base, notFoundMsg: notFoundMsg}
}

func (r *Resource[T]) Collection() *mongo.Collection {
	return r.coll
}

func (r *Resource[T]) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, operationTimeout)
}

func (r *Resource[T]) readFilter(extra bson.M) bson.M {
	filter := bson.M{}
	for k, v := range extra {
		filter[k] = v
	}
	for k, v := range r.base {
		filter[k] = v
	}
	return filter
}

// ParseID converts a client-supplied identifier, rejecting malformed input
// before it reaches the driver.
func ParseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.Wrap(apperror.InvalidParameter, "Invalid document id", err)
	}
	return objectID, nil
}

func (r *Resource[T]) Create(ctx context.Context, doc *T) (*T, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, apperror.FromMongo(err, r.notFoundMsg)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return doc, nil
	}

	var created T
	if err := r.coll.FindOne(ctx, bson.M{"_id": insertedID}).Decode(&created); err != nil {
		return nil, apperror.FromMongo(err, r.notFoundMsg)
	}
	return &created, nil
}

func (r *Resource[T]) FindByID(ctx context.Context, id string, relations ...Relation) (*T, error) {
	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	if len(relations) == 0 {
		var doc T
		err := r.coll.FindOne(ctx, r.readFilter(bson.M{"_id": objectID})).Decode(&doc)
		if err != nil {
			return nil, apperror.FromMongo(err, r.notFoundMsg)
		}
		return &doc, nil
	}

	pipeline := []bson.M{{"$match": r.readFilter(bson.M{"_id": objectID})}}
	for _, rel := range relations {
		pipeline = append(pipeline, bson.M{"$lookup": bson.M{
			"from":         rel.From,
			"localField":   rel.LocalField,
			"foreignField": rel.ForeignField,
			"as":           rel.As,
		}})
		if rel.Single {
			pipeline = append(pipeline, bson.M{"$unwind": bson.M{
				"path":                       "$" + rel.As,
				"preserveNullAndEmptyArrays": true,
			}})
		}
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperror.FromMongo(err, r.notFoundMsg)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, apperror.New(apperror.NotFound, r.notFoundMsg)
	}
	var doc T
	if err := cursor.Decode(&doc); err != nil {
		return nil, apperror.FromMongo(err, r.notFoundMsg)
	}
	return &doc, nil
}

func (r *Resource[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	var doc T
	if err := r.coll.FindOne(ctx, r.readFilter(filter)).Decode(&doc); err != nil {
		return nil, apperror.FromMongo(err, r.notFoundMsg)
	}
	return &doc, nil
}

// UpdateByID applies a partial merge of the given fields and returns the
// document as stored after the update.
func (r *Resource[T]) UpdateByID(ctx context.Context, id string, set bson.M) (*T, error) {
	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	set["updated_at"] = time.Now()

	result := r.coll.FindOneAndUpdate(
		ctx,
		r.readFilter(bson.M{"_id": objectID}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated T
	if err := result.Decode(&updated); err != nil {
		return nil, apperror.FromMongo(err, r.notFoundMsg)
	}
	return &updated, nil
}

func (r *Resource[T]) DeleteByID(ctx context.Context, id string) error {
	objectID, err := ParseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, r.readFilter(bson.M{"_id": objectID}))
	if err != nil {
		return apperror.FromMongo(err, r.notFoundMsg)
	}
	if result.DeletedCount == 0 {
		return apperror.New(apperror.NotFound, r.notFoundMsg)
	}
	return nil
}

// List executes a caller-shaped query with the resource's base filter
// pinned underneath it.
func (r *Resource[T]) List(ctx context.Context, opts query.Options) (*query.Result[T], error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	return query.Run[T](ctx, r.coll, r.base, opts)
}

func (r *Resource[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, r.readFilter(filter))
	if err != nil {
		return 0, apperror.FromMongo(err, r.notFoundMsg)
	}
	return count, nil
}
