package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisAddr    = "localhost:6379"
	defaultDismissedKey = "serving:dismissed_alerts"
)

// ResetDB drops the serving database and the shared dismissed alert set.
func ResetDB(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Dropping serving data, this cannot be undone")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	if err := db.Drop(ctx); err != nil {
		return fmt.Errorf("drop database %s: %w", db.Name(), err)
	}
	logger.Info("Database dropped", "database", db.Name())

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.GetStringOrDef("redis.addr", defaultRedisAddr),
		Password: config.GetStringOrDef("redis.password", ""),
	})
	defer rdb.Close()

	key := config.GetStringOrDef("redis.dismissed.key", defaultDismissedKey)
	if err := rdb.Del(ctx, key).Err(); err != nil {
		logger.Infof("Failed to clear dismissed alerts %s: %v", key, err)
		return nil
	}
	logger.Info("Dismissed alerts cleared", "key", key)
	return nil
}
