// internal/workers/quotes/get-quotes/config.go
package getquotes

import (
	"time"

	"insurance-advisor/internal/common/config"
)

type Config struct {
	// Timeout bounds the whole job: fan-out, scoring, narratives and writes.
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{Timeout: 30 * time.Second}
	if wcfg.Timeout > 0 {
		cfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return cfg
}
