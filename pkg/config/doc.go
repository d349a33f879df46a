// Package config loads typed application configuration from environment
// variables, backed by caarlos0/env struct tags and an optional .env
// file via godotenv.
//
// Each configuration type is parsed once per process and cached, so
// independent components can load their own config structs without
// coordinating:
//
//	type ServerConfig struct {
//		Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil { ... }
//
// MustLoad panics on failure and is intended for settings the process
// cannot run without.
package config
