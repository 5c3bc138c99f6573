// Package config loads nativefetch configuration.
//
// It uses Viper to read a YAML file and environment variables, and
// godotenv to pull in a .env file first. Environment variables carry the
// NATIVEFETCH_ prefix and use underscores for nesting
// (NATIVEFETCH_HOST_MAX_BODY_SIZE sets host.max_body_size).
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("nativefetch", &cfg, config.WithConfigFile(path))
package config
