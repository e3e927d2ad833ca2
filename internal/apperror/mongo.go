package apperror

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// FromMongo translates a mongo driver failure into a classified error so
// that driver internals (index names, BSON field paths) are not surfaced
// verbatim. notFoundMsg is used when the document does not exist.
func FromMongo(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return Wrap(NotFound, notFoundMsg, err)
	}

	if mongo.IsDuplicateKeyError(err) {
		return Wrap(ValidationError, "A record with this value already exists", err)
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		return Wrap(ValidationError, "Document failed validation", err)
	}

	return Wrap(Internal, "Database operation failed", err)
}
