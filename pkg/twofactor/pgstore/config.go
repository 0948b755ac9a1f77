package pgstore

import "github.com/dmitrymomot/twofactor/pkg/pg"

// Config bundles the connection settings with the at-rest encryption key.
type Config struct {
	pg.Config

	// EncryptionKey is the base64 master key, see secrets.ParseKey.
	EncryptionKey string `env:"TWOFACTOR_ENCRYPTION_KEY,required"`
	// AutoMigrate applies pending migrations in Open.
	AutoMigrate bool `env:"TWOFACTOR_PG_AUTO_MIGRATE" envDefault:"false"`
}
