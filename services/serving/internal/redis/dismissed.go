package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aquamarinepk/aqm"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultAddr         = "localhost:6379"
	defaultDismissedKey = "serving:dismissed_alerts"
)

var ErrNotStarted = errors.New("redis not started")

// DismissedStore keeps dismissed alert ids in a Redis set shared by every
// client of the dashboard.
type DismissedStore struct {
	client *goredis.Client
	key    string
	logger aqm.Logger
	config *aqm.Config
}

func NewDismissedStore(config *aqm.Config, logger aqm.Logger) *DismissedStore {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &DismissedStore{
		key:    defaultDismissedKey,
		logger: logger,
		config: config,
	}
}

func (s *DismissedStore) Start(ctx context.Context) error {
	addr := defaultAddr
	password := ""
	if s.config != nil {
		addr = s.config.GetStringOrDef("redis.addr", defaultAddr)
		password = s.config.GetStringOrDef("redis.password", "")
		s.key = s.config.GetStringOrDef("redis.dismissed.key", defaultDismissedKey)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("cannot ping redis at %s: %w", addr, err)
	}

	s.client = client
	s.logger.Infof("Connected to Redis: %s, key: %s", addr, s.key)
	return nil
}

func (s *DismissedStore) Stop(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("cannot close redis client: %w", err)
	}
	return nil
}

func (s *DismissedStore) List(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrNotStarted
	}
	ids, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot list dismissed alerts: %w", err)
	}
	return ids, nil
}

// Add is idempotent; dismissing an id twice leaves one member.
func (s *DismissedStore) Add(ctx context.Context, id string) error {
	if s.client == nil {
		return ErrNotStarted
	}
	if id == "" {
		return fmt.Errorf("alert id is empty")
	}
	if err := s.client.SAdd(ctx, s.key, id).Err(); err != nil {
		return fmt.Errorf("cannot dismiss alert: %w", err)
	}
	return nil
}
