package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TourID      primitive.ObjectID `bson:"tour_id" json:"tourId" validate:"required"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"authorId" validate:"required"`
	Rating      float64            `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Text        string             `bson:"text,omitempty" json:"text,omitempty" validate:"omitempty,max=300"`
	TourDetails *Tour              `bson:"tour_details,omitempty" json:"tourDetails,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// OwnedBy reports whether the review belongs to the given principal.
func (r *Review) OwnedBy(id primitive.ObjectID) bool {
	return r.AuthorID == id
}
