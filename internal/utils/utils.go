package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/dekho-agent/device-bridge/internal/logger"
	"github.com/dekho-agent/device-bridge/pkg/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// SetupContext returns a context cancelled on SIGTERM or SIGINT.
func SetupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
}

// InitConfig loads a .env file when one exists, then the config at path.
func InitConfig(path string) (*config.ConfigManager, []string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return config.InitConfigManager(path)
}

// InitLogger builds the logger from cm and stores it in the returned context.
func InitLogger(ctx context.Context, cm *config.ConfigManager, warnings []string) (context.Context, *zerolog.Logger) {
	return logger.InitLogger(ctx, cm.GetLogLevel(), cm.IsJSONLog(), warnings)
}

// InitAuditLog opens the configured audit log. The returned func disables audit
// logging and closes the file.
func InitAuditLog(cm *config.ConfigManager) (func() error, error) {
	w, err := logger.NewFileAuditWriter(cm.GetAuditLogPath())
	if err != nil {
		return nil, fmt.Errorf("error opening audit log: %w", err)
	}
	if w == nil {
		return func() error { return nil }, nil
	}
	logger.InitAuditLogger(w)
	return func() error {
		logger.InitAuditLogger(nil)
		if c, ok := w.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}, nil
}
