package handlers

import (
	"context"
	"sync"

	"portfolio-api/internal/apperrors"
	"portfolio-api/internal/portfolio"
)

// memStore is an in-memory Store with the same not-found contract as the
// DynamoDB store.
type memStore struct {
	mu    sync.Mutex
	items map[string]portfolio.Portfolio
	err   error

	puts, gets, scans, updates, deletes int
}

func newMemStore() *memStore {
	return &memStore{items: map[string]portfolio.Portfolio{}}
}

func (m *memStore) Put(ctx context.Context, p portfolio.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.err != nil {
		return apperrors.Storage(m.err)
	}
	m.items[p.ID] = p
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (portfolio.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.err != nil {
		return portfolio.Portfolio{}, apperrors.Storage(m.err)
	}
	p, ok := m.items[id]
	if !ok {
		return portfolio.Portfolio{}, apperrors.NotFound("Portfolio not found")
	}
	return p, nil
}

func (m *memStore) Scan(ctx context.Context) ([]portfolio.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans++
	if m.err != nil {
		return nil, apperrors.Storage(m.err)
	}
	var out []portfolio.Portfolio
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, id string, in portfolio.UpdateInput, updatedAt string) (portfolio.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.err != nil {
		return portfolio.Portfolio{}, apperrors.Storage(m.err)
	}
	p := m.items[id]
	p.ID = id
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Skills != nil {
		p.Skills = append([]string{}, (*in.Skills)...)
	}
	p.UpdatedAt = updatedAt
	m.items[id] = p
	return p, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.err != nil {
		return apperrors.Storage(m.err)
	}
	delete(m.items, id)
	return nil
}

type recordedEvent struct {
	Type string
	ID   string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakeNotifier) Notify(ctx context.Context, eventType, id string, p *portfolio.Portfolio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Type: eventType, ID: id})
	return f.err
}
