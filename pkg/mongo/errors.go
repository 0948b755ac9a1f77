package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrEmptyConnectionURL     = errors.New("empty mongo connection url, use MONGODB_URL env var")
	ErrEmptyDatabase          = errors.New("mongo database name is empty")
)

// IsNotFoundError reports whether err wraps mongo.ErrNoDocuments.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, mongo.ErrNoDocuments)
}

// IsDuplicateKeyError detects unique index violations.
func IsDuplicateKeyError(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err)
}
