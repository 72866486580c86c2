package serving

import (
	"sync"
)

// MockPersister records persistence calls made by the store.
type MockPersister struct {
	mu      sync.Mutex
	saves   []savedPair
	deletes []*Group

	SaveFunc   func(before, after *Group)
	DeleteFunc func(group *Group)
}

type savedPair struct {
	before *Group
	after  *Group
}

func NewMockPersister() *MockPersister {
	return &MockPersister{}
}

func (m *MockPersister) Save(before, after *Group) {
	m.mu.Lock()
	m.saves = append(m.saves, savedPair{before: before.Clone(), after: after.Clone()})
	m.mu.Unlock()

	if m.SaveFunc != nil {
		m.SaveFunc(before, after)
	}
}

func (m *MockPersister) Delete(group *Group) {
	m.mu.Lock()
	m.deletes = append(m.deletes, group.Clone())
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		m.DeleteFunc(group)
	}
}

func (m *MockPersister) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *MockPersister) DeleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deletes)
}

func (m *MockPersister) LastSave() (before, after *Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil, nil
	}
	last := m.saves[len(m.saves)-1]
	return last.before, last.after
}
