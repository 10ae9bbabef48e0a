// Package config loads application configuration from environment variables
// into tagged structs, with optional .env file support for development.
//
// Configuration is declared as plain structs with `env` tags and loaded once
// per type:
//
//	type PGConfig struct {
//		ConnURL string `env:"PG_CONN_URL,required"`
//	}
//
//	var cfg PGConfig
//	config.MustLoad(&cfg)
//
// Load is safe for concurrent use and always returns the same snapshot for a
// given type within a process.
package config
