package app

import (
	"context"
	"testing"
	"time"

	"github.com/appetiteclub/serving/services/serving/internal/alerts"
	"github.com/aquamarinepk/aqm"
)

func TestAlertConfig(t *testing.T) {
	tests := []struct {
		name          string
		threshold     string
		interval      string
		wantThreshold int
		wantInterval  time.Duration
	}{
		{
			name:          "defaults",
			wantThreshold: alerts.DefaultThreshold,
			wantInterval:  alerts.DefaultInterval,
		},
		{
			name:          "custom",
			threshold:     "20",
			interval:      "10s",
			wantThreshold: 20,
			wantInterval:  10 * time.Second,
		},
		{
			name:          "garbage",
			threshold:     "soon",
			interval:      "often",
			wantThreshold: alerts.DefaultThreshold,
			wantInterval:  alerts.DefaultInterval,
		},
		{
			name:          "nonPositive",
			threshold:     "0",
			interval:      "-5s",
			wantThreshold: alerts.DefaultThreshold,
			wantInterval:  alerts.DefaultInterval,
		},
		{
			name:          "padded",
			threshold:     " 5 ",
			interval:      " 1m ",
			wantThreshold: 5,
			wantInterval:  time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alertConfig(tt.threshold, tt.interval, nil)
			if got.Threshold != tt.wantThreshold {
				t.Errorf("Threshold = %d, want %d", got.Threshold, tt.wantThreshold)
			}
			if got.Interval != tt.wantInterval {
				t.Errorf("Interval = %v, want %v", got.Interval, tt.wantInterval)
			}
		})
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("New(nil) error = nil, want error")
	}
	a, err := New(aqm.NewConfig(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := a.Run(context.Background()); err == nil {
		t.Error("Run() before Initialize error = nil, want error")
	}
}
