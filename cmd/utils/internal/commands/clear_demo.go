package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type seedTracker struct {
	ID            string      `bson:"_id"`
	GroupIDs      []uuid.UUID `bson:"group_ids"`
	AttendanceIDs []string    `bson:"attendance_ids"`
}

// ClearDemo removes the rows recorded by the last demo seed.
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	seeds := db.Collection(seedsCollection)
	var tracker seedTracker
	err = seeds.FindOne(ctx, bson.M{"_id": demoSeedID}).Decode(&tracker)
	if errors.Is(err, mongo.ErrNoDocuments) {
		logger.Info("No serving demo seed found, nothing to clear")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed tracker: %w", err)
	}

	if len(tracker.GroupIDs) > 0 {
		res, err := db.Collection("serving_groups").DeleteMany(ctx, bson.M{"_id": bson.M{"$in": tracker.GroupIDs}})
		if err != nil {
			return fmt.Errorf("delete demo serving groups: %w", err)
		}
		logger.Info("Deleted demo serving groups", "count", res.DeletedCount)
	}

	if len(tracker.AttendanceIDs) > 0 {
		res, err := db.Collection("attendance_logs").DeleteMany(ctx, bson.M{"_id": bson.M{"$in": tracker.AttendanceIDs}})
		if err != nil {
			return fmt.Errorf("delete demo attendance logs: %w", err)
		}
		logger.Info("Deleted demo attendance logs", "count", res.DeletedCount)
	}

	if _, err := seeds.DeleteOne(ctx, bson.M{"_id": demoSeedID}); err != nil {
		return fmt.Errorf("delete seed tracker: %w", err)
	}
	logger.Info("Cleared serving seed tracker")
	return nil
}
