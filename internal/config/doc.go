// Package config handles configuration loading for askme.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. Unset fields receive defaults before validation.
//
// # Configuration File
//
// Default location:
//
//  1. Path from ASKME_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/askme/config.yaml (~/.config/askme/config.yaml)
//
// Files ending in .toml are parsed as TOML; everything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	answer:
//	  url: "${ASKME_ANSWER_URL}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	answer:
//	  timeout: "30s"
//	session:
//	  ttl: "24h"
//	notices:
//	  duration: "3s"
//
// # Configuration Sections
//
//	subject:
//	  profile_path: "./profile.yaml"  # or name: "Ada"
//	visitor:
//	  name: ""                        # externally supplied visitor name
//	database:
//	  driver: "sqlite"                # sqlite (pure Go) or sqlite3 (cgo)
//	  path: "~/.local/share/askme/history.db"
//	answer:
//	  url: "https://answers.example.com/ask"  # empty uses the profile echo service
//	  timeout: "30s"
//	session:
//	  ttl: "24h"
//	  max_size: 128
//	notices:
//	  duration: "3s"
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
