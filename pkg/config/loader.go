package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// cache holds one parsed value per config struct type so that every
	// component sees the same configuration for the process lifetime.
	cache sync.Map

	dotenvOnce sync.Once
)

// Load parses environment variables into the provided configuration struct
// based on its `env` field tags. The first call loads a .env file if one is
// present; a missing file is not an error. Each config type is parsed once
// per process and cached, so repeated calls are cheap and consistent.
//
// Example:
//
//	type AppConfig struct {
//		BaseURL string `env:"APP_URL,required"`
//		Secret  string `env:"JWT_SECRET,required"`
//	}
//
//	var cfg AppConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	key := typeKey[T]()
	if cached, ok := cache.Load(key); ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return fmt.Errorf("%w: %v", ErrParsingConfig, err)
	}

	// Another goroutine may have parsed the same type concurrently; the
	// stored value wins so every caller observes a single snapshot.
	actual, _ := cache.LoadOrStore(key, *v)
	*v = actual.(T)

	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Intended for configuration the application cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeKey[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.String()
}
