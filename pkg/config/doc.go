// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: an optional
// .env file is read once, the environment is parsed into a tagged struct and the
// result is cached per struct type for the lifetime of the process. Types that
// implement Validator are validated before they are cached.
//
//	type StoreConfig struct {
//		ConnectionString string `env:"PG_CONN_URL,required"`
//		MaxConns         int32  `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// LoadEnv reads additional .env files before parsing; later files win.
// ResetCache and ForceReloadConfig exist for tests that change the environment
// between loads.
//
// Errors are sentinel values (ErrParsingConfig, ErrInvalidConfig, ErrNilPointer,
// ErrLoadingEnvFile) joined with the underlying cause, so callers match them
// with errors.Is.
package config
