package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validator is implemented by configs that check their own values, such as
// twofactor.Config. Load and ForceReloadConfig call it after parsing.
type Validator interface {
	Validate() error
}

// loaded holds one parsed value per config type. Failed loads are not stored.
var loaded = struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}{values: make(map[reflect.Type]any)}

var dotenvOnce sync.Once

// Load fills v from the environment. The .env file in the working directory,
// if any, is read on first use. Each config type is parsed and validated once;
// later calls receive a copy of the cached value.
//
//	var cfg twofactor.Config
//	if err := config.Load(&cfg); err != nil {
//		// ErrParsingConfig or ErrInvalidConfig
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	key := reflect.TypeFor[T]()
	loaded.mu.Lock()
	defer loaded.mu.Unlock()

	if cached, ok := loaded.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	parsed, err := parse[T]()
	if err != nil {
		return err
	}
	loaded.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

func parse[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	if val, ok := any(&cfg).(Validator); ok {
		if err := val.Validate(); err != nil {
			return cfg, errors.Join(ErrInvalidConfig, err)
		}
	}
	return cfg, nil
}
