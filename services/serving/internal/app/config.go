package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/appetiteclub/serving/services/serving/internal/alerts"
	"github.com/aquamarinepk/aqm"
)

// alertConfig parses the alert settings. Bad or missing values fall back to
// the engine defaults.
func alertConfig(threshold, interval string, logger aqm.Logger) alerts.Config {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	cfg := alerts.Config{
		Threshold: alerts.DefaultThreshold,
		Interval:  alerts.DefaultInterval,
	}

	if v := strings.TrimSpace(threshold); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logger.Info("ignoring invalid alerts.late.threshold", "value", v)
		} else {
			cfg.Threshold = n
		}
	}

	if v := strings.TrimSpace(interval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			logger.Info("ignoring invalid alerts.tick.interval", "value", v)
		} else {
			cfg.Interval = d
		}
	}

	return cfg
}
