package logger

import (
	"fmt"

	"github.com/epic-events/crm/internal/config"
	"github.com/epic-events/crm/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a structured logger writing to the configured log file.
// The terminal belongs to the interactive session, so logs stay off stdout
// unless "stdout" is configured explicitly.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if isTerminal(cfg.File) {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	output := cfg.File
	if output == "" {
		output = "stderr"
	}
	zapCfg.OutputPaths = []string{output}
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

func isTerminal(output string) bool {
	return output == "stderr" || output == "stdout"
}

// WithUser adds user context to logger
func WithUser(logger *zap.Logger, user *domain.User) *zap.Logger {
	if user == nil {
		return logger
	}
	return logger.With(
		zap.String("user_id", user.ID.String()),
		zap.String("user_email", user.Email),
		zap.String("role", string(user.Role)),
	)
}

// WithOperation adds the dispatched menu operation to logger
func WithOperation(logger *zap.Logger, operation string) *zap.Logger {
	return logger.With(zap.String("operation", operation))
}
