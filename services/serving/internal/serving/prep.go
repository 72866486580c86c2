package serving

import (
	"github.com/appetiteclub/serving/pkg/prep"
	"github.com/appetiteclub/serving/services/serving/internal/allocation"
)

// BuildPrepList derives the condiments and equipment a group needs from its
// table count and dishes. It runs once at creation; entries are toggled
// independently afterwards and never regenerated.
func BuildPrepList(g *Group) []Sauce {
	dishes := make([]string, 0, len(g.Items))
	for _, item := range g.Items {
		dishes = append(dishes, item.Name)
	}

	entries := prep.Build(g.Name, prepTableCount(g), dishes)
	list := make([]Sauce, 0, len(entries))
	for _, e := range entries {
		list = append(list, Sauce{Name: e.Name, Quantity: e.Quantity, Unit: e.Unit, Note: e.Note})
	}
	return list
}

func prepTableCount(g *Group) int {
	if g.TableCount > 0 {
		return g.TableCount
	}
	if tables := allocation.Parse(g.TableSplit).TotalTables(); tables > 0 {
		return tables
	}
	return 1
}
