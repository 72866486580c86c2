package serving

import (
	"context"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Persister receives the rows to write after an optimistic local change.
// Calls must return immediately; the write outlives the request that caused
// it and its failure never rolls the local change back.
type Persister interface {
	Save(before, after *Group)
	Delete(group *Group)
}

// Store is this instance's view of all serving groups. Every mutation is a
// typed Action reduced under the store lock, applied locally first and then
// handed to the Persister.
type Store struct {
	mu        sync.RWMutex
	state     State
	persister Persister
	logger    aqm.Logger
	now       func() time.Time
}

func NewStore(persister Persister, logger aqm.Logger) *Store {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Store{
		state:     NewState(),
		persister: persister,
		logger:    logger,
		now:       time.Now,
	}
}

// Dispatch reduces the action and schedules persistence of the touched group.
// The returned group is a copy owned by the caller.
func (s *Store) Dispatch(ctx context.Context, a Action) (*Group, error) {
	s.mu.Lock()
	effect, err := Reduce(s.state, a, s.now())
	s.mu.Unlock()

	if err != nil {
		if effect.After != nil {
			return effect.After.Clone(), err
		}
		return nil, err
	}

	s.persist(effect)

	switch effect.Op {
	case EffectDelete:
		return effect.Before.Clone(), nil
	default:
		return effect.After.Clone(), nil
	}
}

func (s *Store) persist(effect Effect) {
	if s.persister == nil {
		return
	}
	switch effect.Op {
	case EffectSave:
		s.persister.Save(effect.Before, effect.After)
	case EffectDelete:
		s.persister.Delete(effect.Before)
	}
}

func (s *Store) Create(ctx context.Context, g *Group) (*Group, error) {
	return s.Dispatch(ctx, CreateGroup{Group: g})
}

func (s *Store) Update(ctx context.Context, groupID uuid.UUID, patch GroupPatch) (*Group, error) {
	return s.Dispatch(ctx, UpdateGroup{GroupID: groupID, Patch: patch})
}

func (s *Store) MarkArrived(ctx context.Context, groupID uuid.UUID) (*Group, error) {
	return s.Dispatch(ctx, MarkArrived{GroupID: groupID})
}

func (s *Store) AddItem(ctx context.Context, groupID uuid.UUID, item Item) (*Group, error) {
	return s.Dispatch(ctx, AddItem{GroupID: groupID, Item: item})
}

func (s *Store) UpdateItem(ctx context.Context, groupID, itemID uuid.UUID, patch ItemPatch) (*Group, error) {
	return s.Dispatch(ctx, UpdateItem{GroupID: groupID, ItemID: itemID, Patch: patch})
}

func (s *Store) DeleteItem(ctx context.Context, groupID, itemID uuid.UUID) (*Group, error) {
	return s.Dispatch(ctx, DeleteItem{GroupID: groupID, ItemID: itemID})
}

func (s *Store) IncrementServed(ctx context.Context, groupID, itemID uuid.UUID) (*Group, error) {
	return s.Dispatch(ctx, IncrementServed{GroupID: groupID, ItemID: itemID})
}

func (s *Store) DecrementServed(ctx context.Context, groupID, itemID uuid.UUID) (*Group, error) {
	return s.Dispatch(ctx, DecrementServed{GroupID: groupID, ItemID: itemID})
}

func (s *Store) ServeAll(ctx context.Context, groupID, itemID uuid.UUID) (*Group, error) {
	return s.Dispatch(ctx, ServeAll{GroupID: groupID, ItemID: itemID})
}

func (s *Store) Redistribute(ctx context.Context, groupID uuid.UUID, tableSplit string) (*Group, error) {
	return s.Dispatch(ctx, Redistribute{GroupID: groupID, TableSplit: tableSplit})
}

func (s *Store) ToggleSauce(ctx context.Context, groupID uuid.UUID, index int) (*Group, error) {
	return s.Dispatch(ctx, ToggleSauce{GroupID: groupID, Index: index})
}

func (s *Store) Complete(ctx context.Context, groupID uuid.UUID) (*Group, error) {
	return s.Dispatch(ctx, CompleteGroup{GroupID: groupID})
}

func (s *Store) Delete(ctx context.Context, groupID uuid.UUID) (*Group, error) {
	return s.Dispatch(ctx, DeleteGroup{GroupID: groupID})
}

// Replace swaps the whole state for a freshly fetched set of groups. It is the
// reconciliation path and does not persist anything.
func (s *Store) Replace(groups []*Group) {
	next := NewState(groups...)

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("serving groups replaced", "count", next.Len())
}

// Get returns a copy of the group with the given id.
func (s *Store) Get(id uuid.UUID) (*Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.state.Get(id)
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// Snapshot returns copies of all groups, oldest first.
func (s *Store) Snapshot() []*Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.state.List()
	out := make([]*Group, len(list))
	for i, g := range list {
		out[i] = g.Clone()
	}
	return out
}

// ListByStatus returns copies of the groups with the given status code.
func (s *Store) ListByStatus(status string) []*Group {
	var out []*Group
	for _, g := range s.Snapshot() {
		if g.Status == status {
			out = append(out, g)
		}
	}
	return out
}
