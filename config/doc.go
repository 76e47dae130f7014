// Package config loads kafkaboot's own settings.
//
// It uses Viper to load an optional config.yml, an optional .env file
// (godotenv) and KAFKABOOT_-prefixed environment variables, in that order of
// increasing precedence. Environment variables map onto nested keys by
// splitting on underscores:
//
//	KAFKABOOT_DISCOVERY_STRATEGY=registry   -> discovery.strategy
//	KAFKABOOT_PATHS_BROKER_ID_FILE=/data/id -> paths.broker_id_file
//
// These settings configure the bootstrapper itself. The broker keys that end
// up in the rendered template are never read through this package.
//
// # Usage
//
//	var s config.Settings
//	err := config.LoadConfig("kafkaboot", &s)
package config
