package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Tour struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name" validate:"required,min=3,max=100"`
	Price           float64              `bson:"price" json:"price" validate:"required,gt=0"`
	PriceDiscount   float64              `bson:"price_discount,omitempty" json:"priceDiscount,omitempty" validate:"omitempty,gte=0"`
	DurationDays    int                  `bson:"duration_days" json:"durationDays" validate:"required,min=1"`
	MaxGroupSize    int                  `bson:"max_group_size,omitempty" json:"maxGroupSize,omitempty" validate:"omitempty,min=1"`
	Difficulty      string               `bson:"difficulty" json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64              `bson:"ratings_average" json:"ratingsAverage"`
	RatingsQuantity int64                `bson:"ratings_quantity" json:"ratingsQuantity"`
	Summary         string               `bson:"summary,omitempty" json:"summary,omitempty"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string               `bson:"image_cover,omitempty" json:"imageCover,omitempty"`
	Images          []string             `bson:"images,omitempty" json:"images,omitempty"`
	StartDates      []time.Time          `bson:"start_dates,omitempty" json:"startDates,omitempty"`
	Guides          []primitive.ObjectID `bson:"guides,omitempty" json:"guides,omitempty"`
	GuideDetails    []User               `bson:"guide_details,omitempty" json:"guideDetails,omitempty"`
	Secret          bool                 `bson:"secret" json:"-"`
	CreatedAt       time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updatedAt"`
}

// DiscountValid reports whether the price/discount pair satisfies the
// cross-field invariant: a discount must never exceed the price.
func (t *Tour) DiscountValid() bool {
	return t.PriceDiscount <= t.Price
}
