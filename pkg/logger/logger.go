package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a sugared zap logger. "prod"/"production" selects the JSON
// production encoder; anything else gets the console development encoder.
func New(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// MustNew is New for main functions that cannot proceed without a logger.
func MustNew(mode string) *zap.SugaredLogger {
	l, err := New(mode)
	if err != nil {
		panic(err)
	}
	return l
}
