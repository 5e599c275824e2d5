// ABOUTME: Selects the configured logging backend
// ABOUTME: Both backends satisfy interfaces.Logger and release their files on Close

package logger

import (
	"fmt"

	"webclipper-api/core/interfaces"
	"webclipper-api/infrastructure/logger/standard"
	"webclipper-api/infrastructure/logger/zap"
	"webclipper-api/pkg/config"
)

// Closer is a logger that owns resources
type Closer interface {
	interfaces.Logger
	Close() error
}

// New builds the logger named by cfg.Backend
func New(cfg config.LogConfig) (Closer, error) {
	switch cfg.Backend {
	case "", "logrus":
		return standard.New(cfg)
	case "zap":
		return zap.New(cfg)
	default:
		return nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}
