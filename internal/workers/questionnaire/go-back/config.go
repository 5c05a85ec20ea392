// internal/workers/questionnaire/go-back/config.go
package goback

import (
	"time"

	"insurance-advisor/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig derives the handler timeout from the worker's job timeout.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{Timeout: 10 * time.Second}
	if wcfg.Timeout > 0 {
		cfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return cfg
}
