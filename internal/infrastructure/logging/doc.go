// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components receive a *Logger and scope it with Named; nothing logs
// through a package-level global.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	wm := window.NewManager(bus, logger)
//	logger.Info("Desktop ready", zap.String("level", "2"))
package logging
