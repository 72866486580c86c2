package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/serving/pkg/enums/groupstatus"
	"github.com/appetiteclub/serving/pkg/prep"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	GroupsCollection     = "serving_groups"
	AttendanceCollection = "attendance_logs"

	dateLayout = "2006-01-02"
)

// Seeded lists the ids written by a demo seed so they can be cleared later.
type Seeded struct {
	GroupIDs      []uuid.UUID
	AttendanceIDs []string
}

type demoItem struct {
	name   string
	total  int
	served int
	unit   string
	note   string
}

type demoGroup struct {
	name     string
	location string
	guests   int
	tables   int
	split    string
	// arrivedAgo is nil for groups still waiting for guests.
	arrivedAgo *time.Duration
	completed  bool
	items      []demoItem
}

func ago(d time.Duration) *time.Duration { return &d }

var demoGroups = []demoGroup{
	{
		name:       "Tiệc cưới Minh & Lan",
		location:   "Sảnh A",
		guests:     26,
		tables:     3,
		split:      "2x10, 1x6",
		arrivedAgo: ago(25 * time.Minute),
		items: []demoItem{
			{name: "Lẩu thái", total: 3, served: 3, unit: "Nồi"},
			{name: "Gà luộc", total: 3, served: 1, unit: "Đĩa"},
			{name: "Súp cua", total: 26, served: 10, unit: "Bát"},
			{name: "Bia Hà Nội", total: 24, served: 24, unit: "Chai"},
		},
	},
	{
		name:       "Họp lớp K15",
		location:   "Tầng 2",
		guests:     12,
		tables:     2,
		split:      "2x6",
		arrivedAgo: ago(5 * time.Minute),
		items: []demoItem{
			{name: "Cá hấp xì dầu", total: 2, unit: "Đĩa"},
			{name: "Rau muống xào tỏi", total: 2, served: 2, unit: "Đĩa"},
		},
	},
	{
		name:     "Sinh nhật bé Na",
		location: "Phòng VIP 1",
		guests:   8,
		tables:   1,
		split:    "1x8",
		items: []demoItem{
			{name: "Bánh kem", total: 1, unit: "Cái", note: "Mang ra sau món chính"},
			{name: "Gà rán", total: 2, unit: "Đĩa"},
		},
	},
	{
		name:       "Công ty Hoa Sen",
		location:   "Sảnh B",
		guests:     10,
		tables:     1,
		split:      "1x10",
		arrivedAgo: ago(2 * time.Hour),
		completed:  true,
		items: []demoItem{
			{name: "Bò lúc lắc", total: 1, served: 1, unit: "Đĩa"},
		},
	},
}

// DemoGroups builds serving group rows in the layout the serving service
// stores them.
func DemoGroups(now time.Time) []bson.M {
	date := now.Format(dateLayout)
	docs := make([]bson.M, 0, len(demoGroups))

	for _, g := range demoGroups {
		items := make([]bson.M, 0, len(g.items))
		for _, it := range g.items {
			items = append(items, bson.M{
				"id":              uuid.New(),
				"name":            it.name,
				"total_quantity":  it.total,
				"served_quantity": it.served,
				"unit":            it.unit,
				"note":            it.note,
			})
		}

		dishes := make([]string, 0, len(g.items))
		for _, it := range g.items {
			dishes = append(dishes, it.name)
		}
		entries := prep.Build(g.name, g.tables, dishes)
		prepList := make([]bson.M, 0, len(entries))
		for _, e := range entries {
			row := bson.M{
				"name":         e.Name,
				"quantity":     e.Quantity,
				"unit":         e.Unit,
				"is_completed": g.arrivedAgo != nil,
			}
			if e.Note != "" {
				row["note"] = e.Note
			}
			prepList = append(prepList, row)
		}

		status := groupstatus.Statuses.Active.Code()
		var start, completion interface{}
		if g.arrivedAgo != nil {
			start = now.Add(-*g.arrivedAgo)
		}
		if g.completed {
			status = groupstatus.Statuses.Completed.Code()
			completion = now.Add(-10 * time.Minute)
		}

		doc := bson.M{
			"_id":         uuid.New(),
			"name":        g.name,
			"location":    g.location,
			"guest_count": g.guests,
			"table_count": g.tables,
			"table_split": g.split,
			"start_time":  start,
			"date":        date,
			"status":      status,
			"items":       items,
			"prep_list":   prepList,
			"created_at":  now.Add(-3 * time.Hour),
			"updated_at":  now,
		}
		if completion != nil {
			doc["completion_time"] = completion
		}
		docs = append(docs, doc)
	}
	return docs
}

// DemoAttendance builds today's attendance rows, two of them late.
func DemoAttendance(now time.Time) []bson.M {
	date := now.Format(dateLayout)
	checkIn := now.Add(-40 * time.Minute)

	rows := []struct {
		employee string
		name     string
		status   string
		late     int
	}{
		{employee: "NV001", name: "Nguyễn Văn An", status: "ON_TIME"},
		{employee: "NV002", name: "Trần Thị Bình", status: "LATE", late: 12},
		{employee: "NV003", name: "Lê Hoàng Cường", status: "LATE", late: 35},
	}

	docs := make([]bson.M, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, bson.M{
			"_id":           fmt.Sprintf("demo-%s-%s", r.employee, date),
			"employee_id":   r.employee,
			"employee_name": r.name,
			"date":          date,
			"status":        r.status,
			"check_in":      checkIn,
			"late_minutes":  r.late,
		})
	}
	return docs
}

// SeedServing upserts the demo rows. Existing rows with the same id are left
// untouched.
func SeedServing(ctx context.Context, db *mongo.Database, now time.Time) (Seeded, error) {
	seeded := Seeded{}

	groups := db.Collection(GroupsCollection)
	for _, doc := range DemoGroups(now) {
		id := doc["_id"].(uuid.UUID)
		_, err := groups.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
		if err != nil {
			return seeded, fmt.Errorf("cannot create demo serving group %q: %w", doc["name"], err)
		}
		seeded.GroupIDs = append(seeded.GroupIDs, id)
	}

	attendance := db.Collection(AttendanceCollection)
	for _, doc := range DemoAttendance(now) {
		id := doc["_id"].(string)
		_, err := attendance.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
		if err != nil {
			return seeded, fmt.Errorf("cannot create demo attendance log %s: %w", id, err)
		}
		seeded.AttendanceIDs = append(seeded.AttendanceIDs, id)
	}

	return seeded, nil
}
