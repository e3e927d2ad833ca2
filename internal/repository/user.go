package repository

import (
	"context"
	"strings"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository struct {
	*Resource[models.User]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		Resource: NewResource[models.User](db.Collection("users"), nil, "User not found"),
	}
}

// FindByEmail looks a user up by their unique, case-insensitive email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByResetTokenHash returns the user whose stored reset-token digest
// matches. Expiry is checked by the caller so the same failure is reported
// for unknown and expired tokens alike.
func (r *UserRepository) FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"password_reset_token": hash})
}

// SetResetToken stores the one-way digest of a freshly issued reset token
// together with its expiry.
func (r *UserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expiry time.Time) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	result, err := r.Collection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password_reset_token":  hash,
			"password_reset_expiry": expiry,
			"updated_at":            time.Now(),
		},
	})
	if err != nil {
		return apperror.FromMongo(err, "User not found")
	}
	if result.MatchedCount == 0 {
		return apperror.New(apperror.NotFound, "User not found")
	}
	return nil
}

// ClearResetToken removes any pending reset token, e.g. after a send
// failure or a completed reset.
func (r *UserRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	_, err := r.Collection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{
			"password_reset_token":  "",
			"password_reset_expiry": "",
		},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return apperror.FromMongo(err, "User not found")
}

// UpdatePassword replaces the password hash, records the change time for
// session invalidation, and clears any pending reset token in the same
// write.
func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	result, err := r.Collection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password":            passwordHash,
			"password_changed_at": changedAt,
			"updated_at":          time.Now(),
		},
		"$unset": bson.M{
			"password_reset_token":  "",
			"password_reset_expiry": "",
		},
	})
	if err != nil {
		return apperror.FromMongo(err, "User not found")
	}
	if result.MatchedCount == 0 {
		return apperror.New(apperror.NotFound, "User not found")
	}
	return nil
}

// SetActive flips the account's active flag.
func (r *UserRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	result, err := r.Collection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"active":     active,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		return apperror.FromMongo(err, "User not found")
	}
	if result.MatchedCount == 0 {
		return apperror.New(apperror.NotFound, "User not found")
	}
	return nil
}

// CleanupExpiredResetTokens removes reset tokens whose expiry has passed.
func (r *UserRepository) CleanupExpiredResetTokens(ctx context.Context) (int64, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	result, err := r.Collection().UpdateMany(ctx,
		bson.M{"password_reset_expiry": bson.M{"$lt": time.Now()}},
		bson.M{"$unset": bson.M{
			"password_reset_token":  "",
			"password_reset_expiry": "",
		}},
	)
	if err != nil {
		return 0, apperror.FromMongo(err, "User not found")
	}
	return result.ModifiedCount, nil
}
