package mongo

import (
	"context"
	"fmt"

	"github.com/appetiteclub/serving/pkg"
	"github.com/appetiteclub/serving/services/serving/internal/alerts"
	"go.mongodb.org/mongo-driver/bson"
)

// AttendanceRepo reads attendance logs written by the staff tools.
type AttendanceRepo struct {
	base *BaseRepo
}

func NewAttendanceRepo(base *BaseRepo) *AttendanceRepo {
	return &AttendanceRepo{base: base}
}

func (r *AttendanceRepo) ListByDate(ctx context.Context, date string) ([]alerts.AttendanceLog, error) {
	db := r.base.GetDatabase()
	if db == nil {
		return nil, fmt.Errorf("mongo not started")
	}

	cursor, err := db.Collection(pkg.TableAttendanceLogs).Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, fmt.Errorf("cannot list attendance logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []alerts.AttendanceLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("cannot decode attendance logs: %w", err)
	}
	return logs, nil
}
