package allocation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxBareTableSize bounds the single-number form ("8") so that stray counts
// like a guest total are not read as one enormous table.
const maxBareTableSize = 50

// Counts and sizes above these are read as typos and the segment is dropped.
const (
	maxTableCount = 100
	maxTableSize  = 100
)

var (
	segmentSeparators = regexp.MustCompile(`[,+;]`)
	countBySize       = regexp.MustCompile(`(\d+)\s*(?:x|×|\*|\.|bàn|mâm)\s*(\d+)`)
	bareSize          = regexp.MustCompile(`^(\d+)\s*(?:người|ng|khách|pax)?$`)
)

// TableGroup is Count tables seating Size guests each.
type TableGroup struct {
	Count int `json:"count" bson:"count"`
	Size  int `json:"size" bson:"size"`
}

// Layout is an ordered list of table groups as entered by staff.
type Layout []TableGroup

func (l Layout) TotalTables() int {
	total := 0
	for _, g := range l {
		total += g.Count
	}
	return total
}

func (l Layout) TotalGuests() int {
	total := 0
	for _, g := range l {
		total += g.Count * g.Size
	}
	return total
}

// String renders the layout in its canonical "2x10, 1x6" form.
func (l Layout) String() string {
	parts := make([]string, 0, len(l))
	for _, g := range l {
		parts = append(parts, fmt.Sprintf("%dx%d", g.Count, g.Size))
	}
	return strings.Join(parts, ", ")
}

// Parse reads a free-text table layout such as "2x10, 1x6" or "3 bàn 6".
// Segments that match no known form are dropped; Parse never fails.
func Parse(input string) Layout {
	layout := Layout{}
	for _, segment := range segmentSeparators.Split(input, -1) {
		segment = Fold(segment)
		if segment == "" {
			continue
		}
		if group, ok := parseSegment(segment); ok {
			layout = append(layout, group)
		}
	}
	return layout
}

func parseSegment(segment string) (TableGroup, bool) {
	if m := countBySize.FindStringSubmatch(segment); m != nil {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			return TableGroup{}, false
		}
		size, err := strconv.Atoi(m[2])
		if err != nil {
			return TableGroup{}, false
		}
		if count < 1 || size < 1 || count > maxTableCount || size > maxTableSize {
			return TableGroup{}, false
		}
		return TableGroup{Count: count, Size: size}, true
	}

	if m := bareSize.FindStringSubmatch(segment); m != nil {
		size, err := strconv.Atoi(m[1])
		if err != nil || size < 1 || size >= maxBareTableSize {
			return TableGroup{}, false
		}
		return TableGroup{Count: 1, Size: size}, true
	}

	return TableGroup{}, false
}
