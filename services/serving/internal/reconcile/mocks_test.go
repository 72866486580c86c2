package reconcile

import (
	"context"
	"sync"

	"github.com/appetiteclub/serving/pkg/event"
	"github.com/appetiteclub/serving/services/serving/internal/alerts"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

type MockPublisher struct {
	mu       sync.Mutex
	messages [][]byte

	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	return nil
}

func (m *MockPublisher) Messages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.messages...)
}

type MockSubscriber struct {
	mu      sync.Mutex
	topic   string
	handler events.HandlerFunc

	SubscribeFunc func(ctx context.Context, topic string, handler events.HandlerFunc) error
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	m.mu.Lock()
	m.topic = topic
	m.handler = handler
	m.mu.Unlock()
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	return nil
}

func (m *MockSubscriber) Deliver(ctx context.Context, msg []byte) error {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	return h(ctx, msg)
}

type MockGroupRepo struct {
	mu      sync.Mutex
	groups  map[uuid.UUID]*serving.Group
	listN   int
	deleted []uuid.UUID

	ListFunc   func(ctx context.Context) ([]*serving.Group, error)
	UpsertFunc func(ctx context.Context, g *serving.Group) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockGroupRepo() *MockGroupRepo {
	return &MockGroupRepo{groups: make(map[uuid.UUID]*serving.Group)}
}

func (m *MockGroupRepo) List(ctx context.Context) ([]*serving.Group, error) {
	m.mu.Lock()
	m.listN++
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*serving.Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g.Clone())
	}
	return out, nil
}

func (m *MockGroupRepo) Upsert(ctx context.Context, g *serving.Group) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, g)
	}
	m.mu.Lock()
	m.groups[g.ID] = g.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MockGroupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	delete(m.groups, id)
	m.deleted = append(m.deleted, id)
	m.mu.Unlock()
	return nil
}

func (m *MockGroupRepo) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listN
}

func (m *MockGroupRepo) Stored(id uuid.UUID) (*serving.Group, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	return g, ok
}

type MockAttendanceRepo struct {
	ListByDateFunc func(ctx context.Context, date string) ([]alerts.AttendanceLog, error)
}

func (m *MockAttendanceRepo) ListByDate(ctx context.Context, date string) ([]alerts.AttendanceLog, error) {
	if m.ListByDateFunc != nil {
		return m.ListByDateFunc(ctx, date)
	}
	return nil, nil
}

type MockDismissedStore struct {
	mu  sync.Mutex
	ids []string

	AddFunc func(ctx context.Context, id string) error
}

func (m *MockDismissedStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...), nil
}

func (m *MockDismissedStore) Add(ctx context.Context, id string) error {
	if m.AddFunc != nil {
		if err := m.AddFunc(ctx, id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.ids = append(m.ids, id)
	m.mu.Unlock()
	return nil
}

type MockReplacer struct {
	mu     sync.Mutex
	calls  int
	groups []*serving.Group
}

func (m *MockReplacer) Replace(groups []*serving.Group) {
	m.mu.Lock()
	m.calls++
	m.groups = groups
	m.mu.Unlock()
}

func (m *MockReplacer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type MockAlertState struct {
	mu         sync.Mutex
	attendance []alerts.AttendanceLog
	dismissed  []string
}

func (m *MockAlertState) SetAttendance(logs []alerts.AttendanceLog) {
	m.mu.Lock()
	m.attendance = logs
	m.mu.Unlock()
}

func (m *MockAlertState) SetDismissed(ids []string) {
	m.mu.Lock()
	m.dismissed = ids
	m.mu.Unlock()
}

type MockArrivals struct {
	mu     sync.Mutex
	groups []*serving.Group
}

func (m *MockArrivals) GuestsArrived(g *serving.Group) {
	m.mu.Lock()
	m.groups = append(m.groups, g)
	m.mu.Unlock()
}

func (m *MockArrivals) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groups)
}

type MockChanges struct {
	mu     sync.Mutex
	events []event.ChangeEvent
}

func (m *MockChanges) Changed(evt event.ChangeEvent) {
	m.mu.Lock()
	m.events = append(m.events, evt)
	m.mu.Unlock()
}

func (m *MockChanges) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
