package serving

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(p Persister) *Store {
	s := NewStore(p, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNewStore(t *testing.T) {
	s := NewStore(nil, nil)
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	if s.logger == nil {
		t.Error("NewStore() should set noop logger when nil")
	}
	if len(s.Snapshot()) != 0 {
		t.Error("new store should be empty")
	}
}

func TestStoreCreatePersists(t *testing.T) {
	p := NewMockPersister()
	s := newTestStore(p)

	g, err := s.Create(context.Background(), &Group{Name: "Đám cưới", TableSplit: "2x10"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.SaveCount() != 1 {
		t.Fatalf("save count = %d, want 1", p.SaveCount())
	}

	before, after := p.LastSave()
	if before != nil {
		t.Error("creation should persist without a before image")
	}
	if after.ID != g.ID {
		t.Errorf("persisted id = %s, want %s", after.ID, g.ID)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s := newTestStore(nil)
	g, err := s.Create(context.Background(), &Group{Name: "Hội thảo"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	g.Name = "changed by caller"

	stored, ok := s.Get(g.ID)
	if !ok {
		t.Fatal("Get() did not find created group")
	}
	if stored.Name != "Hội thảo" {
		t.Errorf("stored name = %q, caller mutation leaked", stored.Name)
	}
}

func TestStoreNoopActionsDoNotPersist(t *testing.T) {
	p := NewMockPersister()
	s := newTestStore(p)
	ctx := context.Background()

	g, _ := s.Create(ctx, &Group{
		Name:  "Khách lẻ",
		Items: []Item{{Name: "Phở", TotalQuantity: 2, Unit: "tô"}},
	})
	itemID := g.Items[0].ID

	got, err := s.DecrementServed(ctx, g.ID, itemID)
	if err != nil {
		t.Fatalf("DecrementServed() error = %v", err)
	}
	if got.Items[0].ServedQuantity != 0 {
		t.Errorf("served = %d, want 0", got.Items[0].ServedQuantity)
	}
	if p.SaveCount() != 1 {
		t.Errorf("save count = %d, want 1 after no-op decrement", p.SaveCount())
	}

	if _, err := s.MarkArrived(ctx, g.ID); err != nil {
		t.Fatalf("MarkArrived() error = %v", err)
	}
	if _, err := s.MarkArrived(ctx, g.ID); err != nil {
		t.Fatalf("second MarkArrived() error = %v", err)
	}
	if p.SaveCount() != 2 {
		t.Errorf("save count = %d, want 2 after repeated arrival", p.SaveCount())
	}
}

func TestStoreCompleteTwice(t *testing.T) {
	p := NewMockPersister()
	s := newTestStore(p)
	ctx := context.Background()

	g, _ := s.Create(ctx, &Group{Name: "Liên hoan"})
	if _, err := s.Complete(ctx, g.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	got, err := s.Complete(ctx, g.ID)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second Complete() error = %v, want %v", err, ErrAlreadyCompleted)
	}
	if got == nil || !got.IsCompleted() {
		t.Error("second Complete() should return the unchanged completed group")
	}
	if p.SaveCount() != 2 {
		t.Errorf("save count = %d, want 2", p.SaveCount())
	}
}

func TestStoreDelete(t *testing.T) {
	p := NewMockPersister()
	s := newTestStore(p)
	ctx := context.Background()

	g, _ := s.Create(ctx, &Group{Name: "Sự kiện"})

	deleted, err := s.Delete(ctx, g.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != g.ID {
		t.Errorf("Delete() returned %s, want %s", deleted.ID, g.ID)
	}
	if p.DeleteCount() != 1 {
		t.Errorf("delete count = %d, want 1", p.DeleteCount())
	}
	if _, ok := s.Get(g.ID); ok {
		t.Error("group still present after delete")
	}
}

func TestStoreReplace(t *testing.T) {
	p := NewMockPersister()
	s := newTestStore(p)
	ctx := context.Background()

	local, _ := s.Create(ctx, &Group{Name: "Cục bộ"})

	remote := &Group{
		ID:        uuid.MustParse("550e8400-e29b-41d4-a716-446655440001"),
		Name:      "Từ máy khác",
		Status:    "ACTIVE",
		CreatedAt: fixedNow,
	}
	s.Replace([]*Group{remote})

	if _, ok := s.Get(local.ID); ok {
		t.Error("Replace() should drop groups absent from the fetched set")
	}
	if _, ok := s.Get(remote.ID); !ok {
		t.Error("Replace() should load fetched groups")
	}
	if p.SaveCount() != 1 {
		t.Errorf("Replace() persisted %d extra rows", p.SaveCount()-1)
	}

	remote.Name = "mutated after replace"
	got, _ := s.Get(remote.ID)
	if got.Name != "Từ máy khác" {
		t.Error("Replace() should copy the fetched groups")
	}
}

func TestStoreListByStatus(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()

	a, _ := s.Create(ctx, &Group{Name: "A"})
	_, _ = s.Create(ctx, &Group{Name: "B"})
	if _, err := s.Complete(ctx, a.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	tests := []struct {
		status string
		want   int
	}{
		{status: "ACTIVE", want: 1},
		{status: "COMPLETED", want: 1},
		{status: "active", want: 0},
		{status: "unknown", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := len(s.ListByStatus(tt.status)); got != tt.want {
				t.Errorf("ListByStatus(%q) = %d groups, want %d", tt.status, got, tt.want)
			}
		})
	}
}

func TestStoreConcurrentIncrements(t *testing.T) {
	s := newTestStore(NewMockPersister())
	ctx := context.Background()

	g, _ := s.Create(ctx, &Group{
		Name:  "Buffet",
		Items: []Item{{Name: "Tôm nướng", TotalQuantity: 50, Unit: "đĩa"}},
	})
	itemID := g.Items[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.IncrementServed(ctx, g.ID, itemID)
		}()
	}
	wg.Wait()

	got, _ := s.Get(g.ID)
	if got.Items[0].ServedQuantity != 20 {
		t.Errorf("served = %d, want 20", got.Items[0].ServedQuantity)
	}
}
