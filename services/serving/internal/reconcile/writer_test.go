package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/appetiteclub/serving/pkg"
	"github.com/appetiteclub/serving/pkg/event"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/google/uuid"
)

func startWriter(t *testing.T, w *Writer) {
	t.Helper()
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}

func stopWriter(t *testing.T, w *Writer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func decodeEvents(t *testing.T, msgs [][]byte) []event.ChangeEvent {
	t.Helper()
	out := make([]event.ChangeEvent, len(msgs))
	for i, m := range msgs {
		if err := json.Unmarshal(m, &out[i]); err != nil {
			t.Fatalf("decode event %d: %v", i, err)
		}
	}
	return out
}

func TestWriterSaveAndDelete(t *testing.T) {
	repo := NewMockGroupRepo()
	pub := NewMockPublisher()
	w := NewWriter(repo, &MockDismissedStore{}, pub, nil)
	startWriter(t, w)

	g := &serving.Group{ID: uuid.MustParse("550e8400-e29b-41d4-a716-446655440040"), Name: "Tiệc"}
	updated := g.Clone()
	updated.Name = "Tiệc cưới"

	w.Save(nil, g)
	w.Save(g, updated)
	w.Delete(updated)
	stopWriter(t, w)

	if _, ok := repo.Stored(g.ID); ok {
		t.Error("group should be deleted from the repo")
	}

	evts := decodeEvents(t, pub.Messages())
	if len(evts) != 3 {
		t.Fatalf("published %d events, want 3", len(evts))
	}

	wantTypes := []string{event.ChangeInsert, event.ChangeUpdate, event.ChangeDelete}
	for i, evt := range evts {
		if evt.EventType != wantTypes[i] {
			t.Errorf("event %d type = %s, want %s", i, evt.EventType, wantTypes[i])
		}
		if evt.Table != pkg.TableServingGroups {
			t.Errorf("event %d table = %s", i, evt.Table)
		}
		if evt.Source != w.Source() {
			t.Errorf("event %d source = %q, want %q", i, evt.Source, w.Source())
		}
	}
	if len(evts[0].Old) != 0 {
		t.Error("insert event should have no old row")
	}
	if len(evts[1].Old) == 0 || len(evts[1].New) == 0 {
		t.Error("update event should carry old and new rows")
	}
	if len(evts[2].Old) == 0 {
		t.Error("delete event should carry the old row")
	}
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", w.Pending())
	}
}

func TestWriterFailureIsNotPublished(t *testing.T) {
	repo := NewMockGroupRepo()
	repo.UpsertFunc = func(ctx context.Context, g *serving.Group) error {
		return errors.New("write timeout")
	}
	pub := NewMockPublisher()
	w := NewWriter(repo, nil, pub, nil)
	startWriter(t, w)

	w.Save(nil, &serving.Group{ID: uuid.New(), Name: "A"})
	stopWriter(t, w)

	if len(pub.Messages()) != 0 {
		t.Error("failed write should not be announced")
	}
}

func TestWriterSaveDismissed(t *testing.T) {
	store := &MockDismissedStore{}
	pub := NewMockPublisher()
	w := NewWriter(nil, store, pub, nil)
	startWriter(t, w)

	w.SaveDismissed("alert_late_1")
	stopWriter(t, w)

	ids, _ := store.List(context.Background())
	if len(ids) != 1 || ids[0] != "alert_late_1" {
		t.Errorf("stored ids = %v", ids)
	}
	evts := decodeEvents(t, pub.Messages())
	if len(evts) != 1 || evts[0].Table != pkg.TableDismissedAlerts || evts[0].RecordID != "alert_late_1" {
		t.Errorf("events = %+v", evts)
	}
}

func TestWriterPublishFailureKeepsGoing(t *testing.T) {
	repo := NewMockGroupRepo()
	pub := NewMockPublisher()
	pub.PublishFunc = func(ctx context.Context, topic string, msg []byte) error {
		return errors.New("nats down")
	}
	w := NewWriter(repo, nil, pub, nil)
	startWriter(t, w)

	id := uuid.New()
	w.Save(nil, &serving.Group{ID: id, Name: "A"})
	stopWriter(t, w)

	if _, ok := repo.Stored(id); !ok {
		t.Error("row should be written even if the event cannot be published")
	}
}

func TestWriterBacksStore(t *testing.T) {
	repo := NewMockGroupRepo()
	w := NewWriter(repo, nil, NewMockPublisher(), nil)
	startWriter(t, w)

	store := serving.NewStore(w, nil)
	g, err := store.Create(context.Background(), &serving.Group{Name: "Hội nghị"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	stopWriter(t, w)

	stored, ok := repo.Stored(g.ID)
	if !ok {
		t.Fatal("created group was not persisted")
	}
	if stored.Name != "Hội nghị" {
		t.Errorf("stored name = %q", stored.Name)
	}
}

func TestWriterFullQueueKeepsOrder(t *testing.T) {
	tests := []struct {
		name      string
		queueSize int
		saves     int
	}{
		{name: "singleSlot", queueSize: 1, saves: 5},
		{name: "fewSlots", queueSize: 3, saves: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := make(chan struct{})
			var (
				mu    sync.Mutex
				order []string
			)
			repo := NewMockGroupRepo()
			repo.UpsertFunc = func(ctx context.Context, g *serving.Group) error {
				<-release
				mu.Lock()
				order = append(order, g.Name)
				mu.Unlock()
				return nil
			}
			w := NewWriter(repo, nil, NewMockPublisher(), nil)
			w.queue = make(chan job, tt.queueSize)
			startWriter(t, w)

			id := uuid.New()
			saved := make(chan struct{})
			go func() {
				defer close(saved)
				var prev *serving.Group
				for i := 1; i <= tt.saves; i++ {
					g := &serving.Group{ID: id, Name: fmt.Sprintf("v%d", i)}
					w.Save(prev, g)
					prev = g
				}
			}()

			// One write in flight, a full queue, and one caller waiting.
			full := int64(tt.queueSize + 2)
			deadline := time.Now().Add(2 * time.Second)
			for w.Pending() < full {
				if time.Now().After(deadline) {
					t.Fatalf("Pending() = %d, want %d", w.Pending(), full)
				}
				time.Sleep(time.Millisecond)
			}
			close(release)
			<-saved
			stopWriter(t, w)

			mu.Lock()
			defer mu.Unlock()
			if len(order) != tt.saves {
				t.Fatalf("wrote %d rows, want %d", len(order), tt.saves)
			}
			for i, name := range order {
				if want := fmt.Sprintf("v%d", i+1); name != want {
					t.Errorf("write %d = %s, want %s", i, name, want)
				}
			}
		})
	}
}
