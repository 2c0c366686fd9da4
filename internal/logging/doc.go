// Package logging provides structured logging for the IM920 host tools.
//
// This package wraps a zap logger with convenience functions used by the
// protocol engine and the CLI. Logging is silent unless a level is supplied
// explicitly or through the IM920_LOG_LEVEL environment variable, so the CLI
// output stays clean by default.
//
// # Log Levels
//
//   - Debug: command frames, reply lines, raw lines read outside a command
//   - Info: device state changes (node number set, group registered)
//   - Warn: recoverable issues (discarded lines, rejected commands)
//   - Error: fatal issues (port could not be opened)
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.Info("Group registered", zap.String("group", group))
//
// Log output goes to stderr so it never mixes with command output on stdout.
package logging
