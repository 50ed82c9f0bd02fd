// Package logger provides adapters for popular logger libraries to work with vellum's Logger interface.
//
// The adapters allow you to use your existing logger with vellum without writing boilerplate.
// Note that the standard library's slog.Logger already implements vellum.Logger directly.
//
// Example with zap:
//
//	import (
//	    "vellum"
//	    "vellum/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    root := vellum.NewRoot[string, string](backend, vellum.WithLogger[string, string](logger.NewZap(zapLogger)))
//	}
package logger
