package logger

import (
	"go.uber.org/zap"

	"github.com/streetsight/streetsight/internal/config"
)

// NewLogger builds a zap logger for the configured environment: production
// encoding for prod, the deterministic example config for test, development
// encoding otherwise.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.Environment == "prod" {
		l, err = zap.NewProduction()
	} else if cfg.Environment == "test" {
		l = zap.NewExample()
	} else {
		l, err = zap.NewDevelopment()
	}

	return l, err
}

func MustNewLogger(cfg *config.Config) *zap.Logger {
	return zap.Must(NewLogger(cfg))
}
