package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Email               string             `bson:"email" json:"email" validate:"required,email"`
	Photo               string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Password            string             `bson:"password" json:"-"`
	Role                string             `bson:"role" json:"role" validate:"required,oneof=user guide lead-guide admin"`
	Active              bool               `bson:"active" json:"active"`
	PasswordChangedAt   *time.Time         `bson:"password_changed_at,omitempty" json:"-"`
	PasswordResetToken  string             `bson:"password_reset_token,omitempty" json:"-"`
	PasswordResetExpiry *time.Time         `bson:"password_reset_expiry,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Principal is the request-scoped identity resolved by the auth middleware.
// It is attached to the request context as a value and is read-only to all
// downstream pipeline stages.
type Principal struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Role   string             `json:"role"`
	Active bool               `json:"active"`
}

// PasswordChangedAfter reports whether the user changed their password
// after the given token issue time. Tokens issued before the most recent
// password change are invalid even if otherwise well-formed.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}

// Principal returns the identity value attached to the request context.
func (u *User) Principal() Principal {
	return Principal{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Active: u.Active,
	}
}
