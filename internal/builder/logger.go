package builder

import (
	"fmt"

	"go.uber.org/zap"
)

// setupLogger builds a JSON production logger at the given level.
func setupLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"

	return cfg.Build()
}
