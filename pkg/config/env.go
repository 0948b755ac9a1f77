package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/joho/godotenv"
)

// LoadEnv loads the given .env files into the process environment.
// With no arguments the default .env in the working directory is loaded.
// Files listed later override values from earlier ones.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Overload(); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Overload(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, fmt.Errorf("%v: %w", paths, err))
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("Failed to load env files: %v", err))
	}
}

// ResetCache drops every cached configuration so the next Load parses the environment again.
func ResetCache() {
	loaded.mu.Lock()
	defer loaded.mu.Unlock()
	clear(loaded.values)
}

// ForceReloadConfig parses and validates the environment into v and replaces
// the cached copy for its type.
func ForceReloadConfig[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	parsed, err := parse[T]()
	if err != nil {
		return err
	}

	loaded.mu.Lock()
	defer loaded.mu.Unlock()
	loaded.values[reflect.TypeFor[T]()] = parsed
	*v = parsed
	return nil
}
