package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/longkey1/aichat/internal/aichat/delivery"
	"github.com/longkey1/aichat/internal/aichat/session"
	"github.com/longkey1/aichat/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// newLogger creates the logger for the configured level; --verbose forces debug
func newLogger(cfg *config.Config) *zap.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.NewLogger(level, os.Stderr)
}

// newAdapter creates a delivery adapter based on the configuration
func newAdapter(cfg *config.Config, log *zap.Logger) (*delivery.Adapter, error) {
	baseURL, err := cfg.GetBaseURL()
	if err != nil {
		return nil, err
	}
	return delivery.New(delivery.Options{
		BaseURL: baseURL,
		Timeout: cfg.Timeout,
	}, log)
}

// openStore opens the session store in the configured history directory
func openStore(cfg *config.Config, log *zap.Logger) (*session.Store, error) {
	dir := cfg.HistoryDir
	if dir == "" {
		var err error
		if dir, err = session.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return session.NewStore(dir, log), nil
}

// resolveMode picks the delivery mode with priority: flag > config file/env
func resolveMode(flagValue string, flagSet bool, cfg *config.Config) (aichat.Mode, error) {
	if flagSet {
		mode, err := aichat.ParseMode(flagValue)
		if err != nil {
			return "", fmt.Errorf("invalid mode from flag: %w", err)
		}
		return mode, nil
	}
	return cfg.GetMode()
}

// statusWriter returns stderr when it is a terminal; the typing spinner is
// suppressed otherwise so redirected output stays clean
func statusWriter() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return nil
}

// interruptContext is cancelled on Ctrl+C, which aborts the delivery in flight
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}
