// Package logger provides structured logging for fileproxy built on zerolog.
//
// Loggers carry a service tag and optional component and request fields.
// Fields are passed as maps so call sites stay free of zerolog types:
//
//	log := logger.NewDefault("fileproxy").WithComponent("proxy")
//	log.Info("object stored", logger.Fields("key", key, "size", size))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
package logger
