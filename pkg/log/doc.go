// Package log provides the logging port used by the lifecycle packages.
//
// Engines, plugins and the CLI depend only on the Logger interface. A zerolog
// adapter is provided for real output and a no-op logger for tests and for
// embedders that do not want lifecycle noise in their logs.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, "info")
//	engine := lifecycle.New(nil, lifecycle.WithLogger(logger))
//
// Or discard everything:
//
//	logger := log.NewNoopLogger()
//
// # Custom Loggers
//
// Any structured logger can be plugged in by implementing Logger:
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
//
// See version.go for version constants that can be used programmatically.
package log
