package db

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// DuplicateKeyError is an error type for duplicate key errors
type DuplicateKeyError struct {
	Key     string
	Message string
}

func (e *DuplicateKeyError) Error() string {
	return e.Message
}

func IsDuplicateKeyError(err error) bool {
	var dupErr *DuplicateKeyError
	return errors.As(err, &dupErr)
}

// Not found Error
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func IsNotFoundError(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

func toDuplicateKeyError(err error, key, message string) error {
	if mongo.IsDuplicateKeyError(err) {
		// Return the custom error type so that we can return 4xx errors to client
		return &DuplicateKeyError{
			Key:     key,
			Message: message,
		}
	}
	return err
}
