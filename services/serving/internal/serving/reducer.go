package serving

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/appetiteclub/serving/pkg/enums/groupstatus"
	"github.com/appetiteclub/serving/services/serving/internal/allocation"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// EffectOp tells the store what must be written after an action.
type EffectOp int

const (
	EffectNone EffectOp = iota
	EffectSave
	EffectDelete
)

// Effect describes the persistence consequence of one reduced action.
// Before is nil for creations; After is nil for deletions.
type Effect struct {
	Op     EffectOp
	Before *Group
	After  *Group
}

// State is the set of serving groups known to this instance.
type State struct {
	groups map[uuid.UUID]*Group
}

func NewState(groups ...*Group) State {
	s := State{groups: make(map[uuid.UUID]*Group, len(groups))}
	for _, g := range groups {
		if g == nil || g.ID == uuid.Nil {
			continue
		}
		s.groups[g.ID] = g.Clone()
	}
	return s
}

func (s State) Get(id uuid.UUID) (*Group, bool) {
	g, ok := s.groups[id]
	return g, ok
}

// List returns the groups ordered by creation time, oldest first.
func (s State) List() []*Group {
	list := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		list = append(list, g)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID.String() < list[j].ID.String()
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (s State) Len() int {
	return len(s.groups)
}

// Action is one typed mutation of the state container.
type Action interface {
	apply(s State, now time.Time) (Effect, error)
}

// Reduce applies an action to the state in place and reports what has to be
// persisted. Groups stored in the state are replaced, never edited, so
// snapshots handed out earlier stay untouched.
func Reduce(s State, a Action, now time.Time) (Effect, error) {
	if s.groups == nil {
		return Effect{}, fmt.Errorf("state not initialized")
	}
	return a.apply(s, now)
}

type CreateGroup struct {
	Group *Group
}

func (a CreateGroup) apply(s State, now time.Time) (Effect, error) {
	if a.Group == nil || strings.TrimSpace(a.Group.Name) == "" {
		return Effect{}, ErrInvalidGroup
	}

	g := a.Group.Clone()
	g.EnsureID()
	if _, exists := s.groups[g.ID]; exists {
		return Effect{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidGroup, g.ID)
	}

	g.Status = groupstatus.Statuses.Active.Code()
	g.StartTime = nil
	g.CompletionTime = nil
	if g.Date == "" {
		g.Date = now.Format(dateLayout)
	}
	if g.Items == nil {
		g.Items = []Item{}
	}
	for i := range g.Items {
		if g.Items[i].ID == uuid.Nil {
			g.Items[i].ID = aqm.GenerateNewID()
		}
		if g.Items[i].ServedQuantity < 0 {
			g.Items[i].ServedQuantity = 0
		}
	}

	if layout := allocation.Parse(g.TableSplit); len(layout) > 0 {
		if g.TableCount == 0 {
			g.TableCount = layout.TotalTables()
		}
		if g.GuestCount == 0 {
			g.GuestCount = layout.TotalGuests()
		}
		g.Items = distributeItems(g.Items, layout)
	}

	g.PrepList = BuildPrepList(g)
	g.CreatedAt = now
	g.UpdatedAt = now

	s.groups[g.ID] = g
	return Effect{Op: EffectSave, After: g}, nil
}

type UpdateGroup struct {
	GroupID uuid.UUID
	Patch   GroupPatch
}

// GroupPatch carries the editable group fields; nil means unchanged.
type GroupPatch struct {
	Name       *string
	Location   *string
	GuestCount *int
	TableCount *int
	Date       *string
}

func (a UpdateGroup) apply(s State, now time.Time) (Effect, error) {
	before, err := activeGroup(s, a.GroupID)
	if err != nil {
		return Effect{}, err
	}

	g := before.Clone()
	p := a.Patch
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return Effect{}, ErrInvalidGroup
		}
		g.Name = *p.Name
	}
	if p.Location != nil {
		g.Location = *p.Location
	}
	if p.GuestCount != nil {
		g.GuestCount = max(*p.GuestCount, 0)
	}
	if p.TableCount != nil {
		g.TableCount = max(*p.TableCount, 0)
	}
	if p.Date != nil {
		g.Date = *p.Date
	}

	return commit(s, before, g, now), nil
}

// MarkArrived stamps the start time once. Later calls keep the first value.
type MarkArrived struct {
	GroupID uuid.UUID
}

func (a MarkArrived) apply(s State, now time.Time) (Effect, error) {
	before, ok := s.groups[a.GroupID]
	if !ok {
		return Effect{}, ErrGroupNotFound
	}
	if before.HasArrived() {
		return Effect{Op: EffectNone, Before: before, After: before}, nil
	}
	if before.IsCompleted() {
		return Effect{}, ErrGroupCompleted
	}

	g := before.Clone()
	started := now
	g.StartTime = &started
	return commit(s, before, g, now), nil
}

type AddItem struct {
	GroupID uuid.UUID
	Item    Item
}

func (a AddItem) apply(s State, now time.Time) (Effect, error) {
	before, err := activeGroup(s, a.GroupID)
	if err != nil {
		return Effect{}, err
	}
	if strings.TrimSpace(a.Item.Name) == "" || a.Item.TotalQuantity < 0 {
		return Effect{}, ErrInvalidItem
	}

	item := a.Item
	if item.ID == uuid.Nil {
		item.ID = aqm.GenerateNewID()
	}
	item.ServedQuantity = max(item.ServedQuantity, 0)

	g := before.Clone()
	g.Items = append(g.Items, item)
	return commit(s, before, g, now), nil
}

type UpdateItem struct {
	GroupID uuid.UUID
	ItemID  uuid.UUID
	Patch   ItemPatch
}

// ItemPatch carries the editable item fields; nil means unchanged.
type ItemPatch struct {
	Name           *string
	TotalQuantity  *int
	ServedQuantity *int
	Unit           *string
	Note           *string
}

func (a UpdateItem) apply(s State, now time.Time) (Effect, error) {
	return updateItem(s, a.GroupID, a.ItemID, now, func(item *Item) (bool, error) {
		p := a.Patch
		if p.Name != nil {
			if strings.TrimSpace(*p.Name) == "" {
				return false, ErrInvalidItem
			}
			item.Name = *p.Name
		}
		if p.TotalQuantity != nil {
			if *p.TotalQuantity < 0 {
				return false, ErrInvalidItem
			}
			item.TotalQuantity = *p.TotalQuantity
		}
		if p.ServedQuantity != nil {
			item.ServedQuantity = max(*p.ServedQuantity, 0)
		}
		if p.Unit != nil {
			item.Unit = *p.Unit
		}
		if p.Note != nil {
			item.Note = *p.Note
		}
		return true, nil
	})
}

type DeleteItem struct {
	GroupID uuid.UUID
	ItemID  uuid.UUID
}

func (a DeleteItem) apply(s State, now time.Time) (Effect, error) {
	before, err := activeGroup(s, a.GroupID)
	if err != nil {
		return Effect{}, err
	}
	idx := before.itemIndex(a.ItemID)
	if idx < 0 {
		return Effect{}, ErrItemNotFound
	}

	g := before.Clone()
	g.Items = append(g.Items[:idx], g.Items[idx+1:]...)
	return commit(s, before, g, now), nil
}

// IncrementServed adds one served portion. There is no ceiling: staff may
// report more portions than ordered.
type IncrementServed struct {
	GroupID uuid.UUID
	ItemID  uuid.UUID
}

func (a IncrementServed) apply(s State, now time.Time) (Effect, error) {
	return updateItem(s, a.GroupID, a.ItemID, now, func(item *Item) (bool, error) {
		item.ServedQuantity++
		return true, nil
	})
}

// DecrementServed removes one served portion, never going below zero.
type DecrementServed struct {
	GroupID uuid.UUID
	ItemID  uuid.UUID
}

func (a DecrementServed) apply(s State, now time.Time) (Effect, error) {
	return updateItem(s, a.GroupID, a.ItemID, now, func(item *Item) (bool, error) {
		if item.ServedQuantity <= 0 {
			return false, nil
		}
		item.ServedQuantity--
		return true, nil
	})
}

// ServeAll marks every ordered portion as served when some are missing.
type ServeAll struct {
	GroupID uuid.UUID
	ItemID  uuid.UUID
}

func (a ServeAll) apply(s State, now time.Time) (Effect, error) {
	return updateItem(s, a.GroupID, a.ItemID, now, func(item *Item) (bool, error) {
		if item.ServedQuantity >= item.TotalQuantity {
			return false, nil
		}
		item.ServedQuantity = item.TotalQuantity
		return true, nil
	})
}

// Redistribute re-runs the quantity distribution against a possibly edited
// layout string. Served counters and the prep list are left alone.
type Redistribute struct {
	GroupID    uuid.UUID
	TableSplit string
}

func (a Redistribute) apply(s State, now time.Time) (Effect, error) {
	before, err := activeGroup(s, a.GroupID)
	if err != nil {
		return Effect{}, err
	}

	g := before.Clone()
	g.TableSplit = a.TableSplit
	if layout := allocation.Parse(a.TableSplit); len(layout) > 0 {
		g.TableCount = layout.TotalTables()
		g.GuestCount = layout.TotalGuests()
		g.Items = distributeItems(g.Items, layout)
	}
	return commit(s, before, g, now), nil
}

type ToggleSauce struct {
	GroupID uuid.UUID
	Index   int
}

func (a ToggleSauce) apply(s State, now time.Time) (Effect, error) {
	before, ok := s.groups[a.GroupID]
	if !ok {
		return Effect{}, ErrGroupNotFound
	}
	if a.Index < 0 || a.Index >= len(before.PrepList) {
		return Effect{}, ErrSauceNotFound
	}

	g := before.Clone()
	g.PrepList[a.Index].IsCompleted = !g.PrepList[a.Index].IsCompleted
	return commit(s, before, g, now), nil
}

// CompleteGroup freezes an active group. Completing twice is rejected and
// leaves the group untouched.
type CompleteGroup struct {
	GroupID uuid.UUID
}

func (a CompleteGroup) apply(s State, now time.Time) (Effect, error) {
	before, ok := s.groups[a.GroupID]
	if !ok {
		return Effect{}, ErrGroupNotFound
	}
	if before.IsCompleted() {
		return Effect{Op: EffectNone, Before: before, After: before}, ErrAlreadyCompleted
	}

	g := before.Clone()
	completed := now
	g.Status = groupstatus.Statuses.Completed.Code()
	g.CompletionTime = &completed
	return commit(s, before, g, now), nil
}

// DeleteGroup removes a group whatever its status.
type DeleteGroup struct {
	GroupID uuid.UUID
}

func (a DeleteGroup) apply(s State, now time.Time) (Effect, error) {
	before, ok := s.groups[a.GroupID]
	if !ok {
		return Effect{}, ErrGroupNotFound
	}
	delete(s.groups, a.GroupID)
	return Effect{Op: EffectDelete, Before: before}, nil
}

func activeGroup(s State, id uuid.UUID) (*Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	if g.IsCompleted() {
		return nil, ErrGroupCompleted
	}
	return g, nil
}

func updateItem(s State, groupID, itemID uuid.UUID, now time.Time, mutate func(*Item) (bool, error)) (Effect, error) {
	before, err := activeGroup(s, groupID)
	if err != nil {
		return Effect{}, err
	}
	idx := before.itemIndex(itemID)
	if idx < 0 {
		return Effect{}, ErrItemNotFound
	}

	g := before.Clone()
	changed, err := mutate(&g.Items[idx])
	if err != nil {
		return Effect{}, err
	}
	if !changed {
		return Effect{Op: EffectNone, Before: before, After: before}, nil
	}
	return commit(s, before, g, now), nil
}

func commit(s State, before, after *Group, now time.Time) Effect {
	after.UpdatedAt = now
	s.groups[after.ID] = after
	return Effect{Op: EffectSave, Before: before, After: after}
}

func distributeItems(items []Item, layout allocation.Layout) []Item {
	in := make([]allocation.Item, len(items))
	for i, item := range items {
		in[i] = allocation.Item{
			Name:     item.Name,
			Quantity: item.TotalQuantity,
			Unit:     item.Unit,
			Note:     item.Note,
		}
	}

	distributed := allocation.Distribute(in, layout)

	out := make([]Item, len(items))
	for i, item := range items {
		item.TotalQuantity = distributed[i].Quantity
		item.Note = distributed[i].Note
		out[i] = item
	}
	return out
}
