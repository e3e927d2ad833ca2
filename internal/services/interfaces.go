package services

import (
	"context"
	"time"

	"tours-backend/internal/models"
	"tours-backend/internal/query"
	"tours-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces abstract the mongo repositories so services can be
// tested without a running database.

type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string, relations ...repository.Relation) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expiry time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	UpdateByID(ctx context.Context, id string, set bson.M) (*models.User, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context, opts query.Options) (*query.Result[models.User], error)
}

type TourStore interface {
	Create(ctx context.Context, tour *models.Tour) (*models.Tour, error)
	FindByID(ctx context.Context, id string, relations ...repository.Relation) (*models.Tour, error)
	UpdateByID(ctx context.Context, id string, set bson.M) (*models.Tour, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context, opts query.Options) (*query.Result[models.Tour], error)
	UpdateRatings(ctx context.Context, id primitive.ObjectID, average float64, quantity int64) error
	Stats(ctx context.Context) ([]repository.DifficultyStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]repository.MonthlyPlanEntry, error)
}

type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, id string, relations ...repository.Relation) (*models.Review, error)
	UpdateByID(ctx context.Context, id string, set bson.M) (*models.Review, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context, opts query.Options) (*query.Result[models.Review], error)
	AggregateRatings(ctx context.Context, tourID primitive.ObjectID) (float64, int64, error)
}

// EmailSender delivers out-of-band messages; the SMTP implementation lives
// in pkg/email.
type EmailSender interface {
	SendPasswordResetEmail(to, resetToken string) error
}
