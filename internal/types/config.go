package types

type RunMode string

const (
	// ModeLocal runs the API server with developer-friendly logging
	ModeLocal RunMode = "local"
	// ModeProduction runs the API server behind the deployment's ingress
	ModeProduction RunMode = "production"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
