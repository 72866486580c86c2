package intake

import (
	"fmt"
	"math"
	"strings"

	"github.com/appetiteclub/serving/services/serving/internal/allocation"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
)

// Candidate is one group guessed by the extractor from an order slip. Every
// field is untrusted.
type Candidate struct {
	Name       string          `json:"name"`
	Location   string          `json:"location"`
	GuestCount int             `json:"guest_count"`
	TableCount int             `json:"table_count"`
	TableSplit string          `json:"table_split"`
	Items      []CandidateItem `json:"items"`
	Confidence float64         `json:"confidence"`
	Warnings   []string        `json:"warnings"`
}

type CandidateItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	Note     string `json:"note"`
}

// Draft is a cleaned candidate ready for staff review. Nothing is stored
// until staff submits Group through the create endpoint.
type Draft struct {
	Group      serving.GroupCreateRequest `json:"group"`
	Layout     string                     `json:"layout,omitempty"`
	Confidence float64                    `json:"confidence"`
	Warnings   []string                   `json:"warnings"`
}

// Normalize cleans a candidate. Counts come from the table split when it
// parses, and items are redistributed against it.
func Normalize(c Candidate) Draft {
	d := Draft{
		Confidence: clampConfidence(c.Confidence),
		Warnings:   append([]string{}, c.Warnings...),
	}

	g := serving.GroupCreateRequest{
		Name:       strings.TrimSpace(c.Name),
		Location:   strings.TrimSpace(c.Location),
		GuestCount: max(c.GuestCount, 0),
		TableCount: max(c.TableCount, 0),
		TableSplit: strings.TrimSpace(c.TableSplit),
		Items:      []serving.ItemCreateRequest{},
	}
	if g.Name == "" {
		d.Warnings = append(d.Warnings, "group name missing")
	}

	for i, item := range c.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			d.Warnings = append(d.Warnings, fmt.Sprintf("item %d dropped: no name", i+1))
			continue
		}
		qty := item.Quantity
		if qty < 0 {
			d.Warnings = append(d.Warnings, fmt.Sprintf("%s: negative quantity set to 0", name))
			qty = 0
		}
		g.Items = append(g.Items, serving.ItemCreateRequest{
			Name:          name,
			TotalQuantity: qty,
			Unit:          strings.TrimSpace(item.Unit),
			Note:          strings.TrimSpace(item.Note),
		})
	}

	layout := allocation.Parse(g.TableSplit)
	switch {
	case len(layout) > 0:
		if g.TableCount > 0 && g.TableCount != layout.TotalTables() {
			d.Warnings = append(d.Warnings, fmt.Sprintf("table count %d replaced by %d from table split", g.TableCount, layout.TotalTables()))
		}
		if g.GuestCount > 0 && g.GuestCount != layout.TotalGuests() {
			d.Warnings = append(d.Warnings, fmt.Sprintf("guest count %d replaced by %d from table split", g.GuestCount, layout.TotalGuests()))
		}
		g.TableCount = layout.TotalTables()
		g.GuestCount = layout.TotalGuests()
		g.Items = distribute(g.Items, layout)
		d.Layout = layout.String()
	case g.TableSplit != "":
		d.Warnings = append(d.Warnings, fmt.Sprintf("table split %q not recognized", g.TableSplit))
	}

	d.Group = g
	return d
}

func NormalizeAll(candidates []Candidate) []Draft {
	drafts := make([]Draft, 0, len(candidates))
	for _, c := range candidates {
		drafts = append(drafts, Normalize(c))
	}
	return drafts
}

func distribute(items []serving.ItemCreateRequest, layout allocation.Layout) []serving.ItemCreateRequest {
	in := make([]allocation.Item, len(items))
	for i, item := range items {
		in[i] = allocation.Item{Name: item.Name, Quantity: item.TotalQuantity, Unit: item.Unit, Note: item.Note}
	}
	out := allocation.Distribute(in, layout)
	for i := range items {
		items[i].TotalQuantity = out[i].Quantity
		items[i].Note = out[i].Note
	}
	return items
}

func clampConfidence(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
