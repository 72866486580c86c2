package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/google/uuid"
)

const (
	TypeServingDelay   = "SERVING_DELAY"
	TypeLateAttendance = "LATE_ATTENDANCE"

	servingPrefix = "alert_serving_"
	latePrefix    = "alert_late_"

	// AttendanceLate is the attendance status that raises an alert.
	AttendanceLate = "LATE"
)

var ErrInvalidAlertID = errors.New("invalid alert id")

// Alert is derived on every tick and never stored. Its id is stable for the
// same underlying condition.
type Alert struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	Details   string     `json:"details"`
	Severity  string     `json:"severity"`
	Timestamp time.Time  `json:"timestamp"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
}

// AttendanceLog is one employee check-in for a day.
type AttendanceLog struct {
	ID           string     `json:"id" bson:"_id"`
	EmployeeID   string     `json:"employee_id" bson:"employee_id"`
	EmployeeName string     `json:"employee_name" bson:"employee_name"`
	Date         string     `json:"date" bson:"date"`
	Status       string     `json:"status" bson:"status"`
	CheckIn      *time.Time `json:"check_in,omitempty" bson:"check_in,omitempty"`
	LateMinutes  int        `json:"late_minutes" bson:"late_minutes"`
}

// History is the acknowledged side of the alert set.
type History struct {
	Alerts       []Alert  `json:"alerts"`
	DismissedIDs []string `json:"dismissed_ids"`
}

type GroupSource interface {
	Snapshot() []*serving.Group
}

type AttendanceRepo interface {
	ListByDate(ctx context.Context, date string) ([]AttendanceLog, error)
}

type DismissedStore interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, id string) error
}

// DismissPersister takes a dismissed id to be written in the background.
type DismissPersister interface {
	SaveDismissed(id string)
}

// Notifier is told once about every newly surfaced alert.
type Notifier interface {
	AlertRaised(alert Alert)
}

func ServingAlertID(groupID uuid.UUID) string {
	return servingPrefix + groupID.String()
}

func LateAlertID(logID string) string {
	return latePrefix + logID
}
