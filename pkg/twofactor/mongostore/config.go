package mongostore

import "github.com/dmitrymomot/twofactor/pkg/mongo"

// Config bundles the connection settings with the collection and the at-rest encryption key.
type Config struct {
	mongo.Config

	Collection    string `env:"TWOFACTOR_MONGO_COLLECTION" envDefault:"two_factor_authentications"`
	EncryptionKey string `env:"TWOFACTOR_ENCRYPTION_KEY,required"`
	// MaxAttempts bounds the optimistic retries of Update.
	MaxAttempts int `env:"TWOFACTOR_MONGO_MAX_ATTEMPTS" envDefault:"5"`
}
