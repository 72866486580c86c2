package serving

import (
	"time"

	"github.com/appetiteclub/serving/pkg/enums/groupstatus"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Group is a party seated at one or more physical tables and tracked as one
// unit of service progress. The whole group, items and prep list included,
// is persisted as a single row.
type Group struct {
	ID             uuid.UUID  `json:"id" bson:"_id"`
	Name           string     `json:"name" bson:"name"`
	Location       string     `json:"location" bson:"location"`
	GuestCount     int        `json:"guest_count" bson:"guest_count"`
	TableCount     int        `json:"table_count" bson:"table_count"`
	TableSplit     string     `json:"table_split" bson:"table_split"`
	StartTime      *time.Time `json:"start_time" bson:"start_time"`
	Date           string     `json:"date" bson:"date"`
	Status         string     `json:"status" bson:"status"`
	CompletionTime *time.Time `json:"completion_time,omitempty" bson:"completion_time,omitempty"`
	Items          []Item     `json:"items" bson:"items"`
	PrepList       []Sauce    `json:"prep_list" bson:"prep_list"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// Item is one ordered dish and its delivery counter.
type Item struct {
	ID             uuid.UUID `json:"id" bson:"id"`
	Name           string    `json:"name" bson:"name"`
	TotalQuantity  int       `json:"total_quantity" bson:"total_quantity"`
	ServedQuantity int       `json:"served_quantity" bson:"served_quantity"`
	Unit           string    `json:"unit" bson:"unit"`
	Note           string    `json:"note,omitempty" bson:"note,omitempty"`
}

// Sauce is a prep list entry: a condiment or piece of equipment to set up
// before guests sit down.
type Sauce struct {
	Name        string `json:"name" bson:"name"`
	Quantity    int    `json:"quantity" bson:"quantity"`
	Unit        string `json:"unit" bson:"unit"`
	IsCompleted bool   `json:"is_completed" bson:"is_completed"`
	Note        string `json:"note,omitempty" bson:"note,omitempty"`
}

func (g *Group) GetID() uuid.UUID {
	return g.ID
}

func (g *Group) ResourceType() string {
	return "serving-group"
}

func (g *Group) SetID(id uuid.UUID) {
	g.ID = id
}

func NewGroup() *Group {
	return &Group{
		ID:       aqm.GenerateNewID(),
		Status:   groupstatus.Statuses.Active.Code(),
		Items:    []Item{},
		PrepList: []Sauce{},
	}
}

func (g *Group) EnsureID() {
	if g.ID == uuid.Nil {
		g.ID = aqm.GenerateNewID()
	}
}

func (g *Group) IsActive() bool {
	return g.Status == groupstatus.Statuses.Active.Code()
}

func (g *Group) IsCompleted() bool {
	return g.Status == groupstatus.Statuses.Completed.Code()
}

// HasArrived reports whether guests have been marked as physically seated.
func (g *Group) HasArrived() bool {
	return g.StartTime != nil
}

// Progress is the served share of all ordered portions, 0 for empty groups.
func (g *Group) Progress() float64 {
	served, total := g.Counts()
	if total == 0 {
		return 0
	}
	return float64(served) / float64(total)
}

// Counts returns served and total portions over all items.
func (g *Group) Counts() (served, total int) {
	for _, item := range g.Items {
		served += item.ServedQuantity
		total += item.TotalQuantity
	}
	return served, total
}

// Pending lists items with portions still to be delivered.
func (g *Group) Pending() []Item {
	var pending []Item
	for _, item := range g.Items {
		if item.ServedQuantity < item.TotalQuantity {
			pending = append(pending, item)
		}
	}
	return pending
}

func (g *Group) itemIndex(id uuid.UUID) int {
	for i := range g.Items {
		if g.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers never share slices with the store.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	c := *g
	if g.StartTime != nil {
		t := *g.StartTime
		c.StartTime = &t
	}
	if g.CompletionTime != nil {
		t := *g.CompletionTime
		c.CompletionTime = &t
	}
	c.Items = append([]Item{}, g.Items...)
	c.PrepList = append([]Sauce{}, g.PrepList...)
	return &c
}
