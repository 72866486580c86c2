package seeding

import (
	"testing"
	"time"

	"github.com/appetiteclub/serving/pkg/enums/groupstatus"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDemoGroups(t *testing.T) {
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	docs := DemoGroups(now)

	if len(docs) != len(demoGroups) {
		t.Fatalf("DemoGroups() = %d docs, want %d", len(docs), len(demoGroups))
	}

	seen := map[uuid.UUID]bool{}
	waiting, completed := 0, 0
	for _, doc := range docs {
		id, ok := doc["_id"].(uuid.UUID)
		if !ok || id == uuid.Nil {
			t.Fatalf("doc %q has no uuid id", doc["name"])
		}
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true

		if doc["date"] != "2026-03-14" {
			t.Errorf("doc %q date = %v, want 2026-03-14", doc["name"], doc["date"])
		}
		if doc["start_time"] == nil {
			waiting++
		}
		if doc["status"] == groupstatus.Statuses.Completed.Code() {
			completed++
			if _, ok := doc["completion_time"]; !ok {
				t.Errorf("completed doc %q has no completion_time", doc["name"])
			}
		}
	}

	if waiting != 1 {
		t.Errorf("waiting groups = %d, want 1", waiting)
	}
	if completed != 1 {
		t.Errorf("completed groups = %d, want 1", completed)
	}
}

func TestDemoGroupsPrepList(t *testing.T) {
	docs := DemoGroups(time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	byName := map[string]bson.M{}
	for _, doc := range docs {
		byName[doc["name"].(string)] = doc
	}

	tests := []struct {
		name      string
		group     string
		wantSoy   int
		wantStove bool
	}{
		{name: "hotPotGetsStovePerTable", group: "Tiệc cưới Minh & Lan", wantSoy: 6, wantStove: true},
		{name: "twoBowlsPerTable", group: "Họp lớp K15", wantSoy: 4},
		{name: "singleTable", group: "Sinh nhật bé Na", wantSoy: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, ok := byName[tt.group]
			if !ok {
				t.Fatalf("no demo group %q", tt.group)
			}
			list := doc["prep_list"].([]bson.M)
			tables := doc["table_count"].(int)

			wantLen := 3
			if tt.wantStove {
				wantLen = 4
			}
			if len(list) != wantLen {
				t.Fatalf("prep_list len = %d, want %d", len(list), wantLen)
			}
			if list[0]["quantity"] != tt.wantSoy {
				t.Errorf("soy bowls = %v, want %d", list[0]["quantity"], tt.wantSoy)
			}
			if tt.wantStove && list[3]["quantity"] != tables {
				t.Errorf("stoves = %v, want one per table (%d)", list[3]["quantity"], tables)
			}
		})
	}
}

func TestDemoAttendance(t *testing.T) {
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	docs := DemoAttendance(now)

	late := 0
	for _, doc := range docs {
		if doc["status"] == "LATE" {
			late++
			if doc["late_minutes"].(int) <= 0 {
				t.Errorf("late row %v has no late minutes", doc["_id"])
			}
		}
	}
	if late != 2 {
		t.Errorf("late rows = %d, want 2", late)
	}
}
