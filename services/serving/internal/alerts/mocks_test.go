package alerts

import (
	"sync"

	"github.com/appetiteclub/serving/services/serving/internal/serving"
)

type MockGroupSource struct {
	mu     sync.Mutex
	groups []*serving.Group
}

func NewMockGroupSource(groups ...*serving.Group) *MockGroupSource {
	return &MockGroupSource{groups: groups}
}

func (m *MockGroupSource) Snapshot() []*serving.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*serving.Group, len(m.groups))
	for i, g := range m.groups {
		out[i] = g.Clone()
	}
	return out
}

func (m *MockGroupSource) Set(groups ...*serving.Group) {
	m.mu.Lock()
	m.groups = groups
	m.mu.Unlock()
}

type MockNotifier struct {
	mu     sync.Mutex
	raised []Alert
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) AlertRaised(alert Alert) {
	m.mu.Lock()
	m.raised = append(m.raised, alert)
	m.mu.Unlock()
}

func (m *MockNotifier) Raised() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Alert(nil), m.raised...)
}

type MockDismissPersister struct {
	mu  sync.Mutex
	ids []string
}

func NewMockDismissPersister() *MockDismissPersister {
	return &MockDismissPersister{}
}

func (m *MockDismissPersister) SaveDismissed(id string) {
	m.mu.Lock()
	m.ids = append(m.ids, id)
	m.mu.Unlock()
}

func (m *MockDismissPersister) Saved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...)
}
