package allocation

import (
	"fmt"
	"strings"
)

// PerHeadNote marks items portioned one per guest.
const PerHeadNote = "Theo đầu người"

const defaultUnitLabel = "phần"

// Kind tells how an item is portioned across a layout.
type Kind int

const (
	// Shared items are served once per table.
	Shared Kind = iota
	// PerGuest items are served once per diner.
	PerGuest
)

var (
	soupKeywords  = []string{"soup", "súp", "cháo"}
	sharedKeyword = []string{"rice", "cơm", "canh", "broth"}
	perGuestUnits = []string{"bowl", "bát", "chén", "cup", "cốc", "ly", "glass", "set", "suất", "phần", "per head", "người", "pax"}
)

// Item is the portion of an ordered item the distributor reads and rewrites.
type Item struct {
	Name     string
	Quantity int
	Unit     string
	Note     string
}

// Classify decides how an item is portioned. Forced reports whether the
// decision came from the dish name rather than its unit.
func Classify(name, unit string) (kind Kind, forced bool) {
	n := Fold(name)
	if containsAny(n, soupKeywords) {
		return PerGuest, true
	}
	if containsAny(n, sharedKeyword) {
		return Shared, true
	}
	if containsAny(Fold(unit), perGuestUnits) {
		return PerGuest, false
	}
	return Shared, false
}

// Distribute rescales item quantities to the layout and rewrites their notes.
// The input slice is never modified. Running Distribute on its own output
// with the same layout yields the same items.
func Distribute(items []Item, layout Layout) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	tables := layout.TotalTables()
	if tables == 0 {
		return out
	}
	guests := layout.TotalGuests()

	for i := range out {
		item := &out[i]
		kind, forced := Classify(item.Name, item.Unit)

		switch {
		case kind == PerGuest && forced:
			item.Quantity = guests
			item.Note = PerHeadNote
		case kind == PerGuest:
			if withinTolerance(item.Quantity, guests) {
				item.Quantity = guests
				item.Note = PerHeadNote
			}
		default:
			item.Quantity = sharedQuantity(item.Quantity, tables)
			if item.Quantity > 0 {
				item.Note = tableNote(item.Quantity, item.Unit, layout)
			}
		}
	}

	return out
}

// sharedQuantity lifts short counts to one per table and absorbs a single
// surplus portion, which is usually a double-read from the order slip.
// Larger surpluses are kept as deliberate extra orders.
func sharedQuantity(quantity, tables int) int {
	switch {
	case quantity < tables:
		return tables
	case quantity == tables+1:
		return tables
	default:
		return quantity
	}
}

// withinTolerance reports whether quantity/guests lies in [0.9, 1.1].
func withinTolerance(quantity, guests int) bool {
	if guests <= 0 {
		return false
	}
	return 10*quantity >= 9*guests && 10*quantity <= 11*guests
}

func tableNote(quantity int, unit string, layout Layout) string {
	tables := layout.TotalTables()
	label := strings.TrimSpace(unit)
	if label == "" {
		label = defaultUnitLabel
	}

	perTable := quantity / tables
	if perTable == 0 {
		return fmt.Sprintf("Chia %d %s cho %d bàn", quantity, label, tables)
	}

	var parts []string
	seen := map[int]bool{}
	for _, g := range layout {
		if seen[g.Size] {
			continue
		}
		seen[g.Size] = true
		parts = append(parts, fmt.Sprintf("%d %s bàn %d", perTable, label, g.Size))
	}

	if remainder := quantity % tables; remainder != 0 {
		parts = append(parts, fmt.Sprintf("dư %d %s", remainder, label))
	}

	return strings.Join(parts, ", ")
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
