// Package logger provides structured logging for kafkaboot using zerolog.
//
// Logs go to stderr by default so they never interleave with the broker's
// forwarded stdout or with rendered output printed by the CLI.
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "kafkaboot").WithComponent("discovery")
//	log.Info("task resolved", logger.Fields(logger.FieldTask, name))
package logger
