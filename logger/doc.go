// Package logger provides structured logging for nativefetch using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. Bridge code tags its entries with the command
// name and resource id so a request can be followed across the adapter,
// the IPC server, and the native host.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("host")
//	log.Debug("command dispatched", logger.Fields(logger.FieldCommand, cmd))
package logger
