// Package logger builds the zap logger shared by every console component.
package logger

import (
	"fmt"

	"github.com/straye-as/crm-console/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Component names used with WithComponent
const (
	ComponentHTTP       = "http"
	ComponentSession    = "session"
	ComponentRepository = "repository"
	ComponentConsole    = "console"
	ComponentJobs       = "jobs"
)

// NewLogger creates a structured logger writing to stderr. JSON output is
// used when asked for or in production, colored console output otherwise.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	zapCfg := baseConfig(cfg.Format, appCfg.Environment)

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	// stdout carries the CLI's JSON view-models
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

func baseConfig(format, environment string) zap.Config {
	if format == "json" || environment == "production" {
		zapCfg := zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.Sampling = nil
		return zapCfg
	}

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.DisableStacktrace = true
	return zapCfg
}

// WithComponent names the logger after the component using it
func WithComponent(logger *zap.Logger, component string) *zap.Logger {
	return logger.Named(component)
}

// WithRequest adds outbound request context to logger
func WithRequest(logger *zap.Logger, method, path, requestID string) *zap.Logger {
	return logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithUser adds user context to logger
func WithUser(logger *zap.Logger, userID, displayName string) *zap.Logger {
	return logger.With(
		zap.String("user_id", userID),
		zap.String("user_name", displayName),
	)
}

// WithView adds the signed-in role and the view it is looking at
func WithView(logger *zap.Logger, role, view string) *zap.Logger {
	return logger.With(
		zap.String("role", role),
		zap.String("view", view),
	)
}
