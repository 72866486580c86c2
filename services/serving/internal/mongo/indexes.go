package mongo

import (
	"context"
	"fmt"

	"github.com/appetiteclub/serving/pkg"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	groups := db.Collection(pkg.TableServingGroups)
	if _, err := groups.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("cannot create serving group indexes: %w", err)
	}

	attendance := db.Collection(pkg.TableAttendanceLogs)
	if _, err := attendance.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}, {Key: "status", Value: 1}},
	}); err != nil {
		return fmt.Errorf("cannot create attendance indexes: %w", err)
	}
	return nil
}
