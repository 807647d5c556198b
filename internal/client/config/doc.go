// Package config loads runtime configuration for the mealkeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml/.yml are read as YAML, anything else as JSON.
//  3. Command-line flags, which override earlier values.
//
// # File schema
//
// Durations use timex.Duration, so "3s" and integer nanoseconds both work:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api",
//	  "request_timeout": "15s",
//	  "refresh_timeout": "10s",
//	  "refresh_wait_timeout": "20s",
//	  "store_backend": "sqlite",
//	  "store_path": "session.db",
//	  "store_secret": "",
//	  "redis_addr": "127.0.0.1:6379",
//	  "redis_prefix": "mealkeeper:",
//	  "log_level": "info"
//	}
//
// Environment variables are not consulted.
package config
