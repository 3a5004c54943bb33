// Package config provides configuration management for query-sync.
//
// It utilizes Viper for loading configuration from environment variables and
// a local .env file (godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key, snapshot bucket)
//   - Log: logging level and format
//   - Database: MySQL/sqlite connection details
//   - Storage: S3/MinIO credentials for snapshot sharing
//   - Engine: request coordination defaults (TTL, retries, backoff)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
