package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/serving/cmd/utils/internal/seeding"
	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
)

// SeedDemo writes today's demo serving groups and attendance logs once.
func SeedDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo seeding process...")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	seeds := db.Collection(seedsCollection)
	count, err := seeds.CountDocuments(ctx, bson.M{"_id": demoSeedID})
	if err != nil {
		return fmt.Errorf("check seed status: %w", err)
	}
	if count > 0 {
		logger.Info("Serving demo seeds already applied, skipping")
		return nil
	}

	seeded, err := seeding.SeedServing(ctx, db, time.Now())
	if err != nil {
		return fmt.Errorf("seed serving: %w", err)
	}

	_, err = seeds.InsertOne(ctx, bson.M{
		"_id":            demoSeedID,
		"description":    "Demo serving groups and attendance logs for today",
		"group_ids":      seeded.GroupIDs,
		"attendance_ids": seeded.AttendanceIDs,
		"applied_at":     time.Now(),
	})
	if err != nil {
		logger.Infof("Failed to mark seed as applied: %v", err)
	}

	logger.Info("Serving demo seeds applied", "groups", len(seeded.GroupIDs), "attendance", len(seeded.AttendanceIDs))
	return nil
}
