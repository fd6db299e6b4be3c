package store

// memory.go implements Store on a plain map. It backs unit tests and any
// embedded use where PostgreSQL is unavailable. Mutations apply immediately;
// Commit only marks the unit of work as flushed so callers keep the same
// open → mutate → Commit discipline against both backends.

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/clientdesk/clientdesk/internal/client"
)

// Memory is an in-memory Store keyed by card code.
type Memory struct {
	mu      sync.Mutex
	records map[string]*client.Client

	// Commits counts Commit calls, letting tests assert the single
	// batch-commit contract.
	Commits int
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*client.Client)}
}

func (m *Memory) FindByCode(_ context.Context, code string) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.records[code]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (m *Memory) Insert(_ context.Context, c *client.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[c.CardCode]; ok {
		return fmt.Errorf("insert client %s: %w", c.CardCode, ErrDuplicate)
	}
	m.records[c.CardCode] = c.Clone()
	return nil
}

func (m *Memory) UpdateFields(_ context.Context, code string, c *client.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[code]
	if !ok {
		return fmt.Errorf("update client %s: %w", code, ErrNotFound)
	}
	existing.CopyFieldsFrom(c.Clone())
	return nil
}

func (m *Memory) RenameKey(_ context.Context, oldCode, newCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[oldCode]
	if !ok {
		return fmt.Errorf("rename %s to %s: %w", oldCode, newCode, ErrNotFound)
	}
	if _, taken := m.records[newCode]; taken && newCode != oldCode {
		return fmt.Errorf("rename %s to %s: %w", oldCode, newCode, ErrDuplicate)
	}
	delete(m.records, oldCode)
	existing.CardCode = newCode
	m.records[newCode] = existing
	return nil
}

func (m *Memory) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[code]; !ok {
		return fmt.Errorf("delete client %s: %w", code, ErrNotFound)
	}
	delete(m.records, code)
	return nil
}

func (m *Memory) ListAllOrderedByLastName(_ context.Context) ([]client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]client.Client, 0, len(m.records))
	for _, c := range m.records {
		out = append(out, *c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].CardCode < out[j].CardCode
	})
	return out, nil
}

func (m *Memory) Commit(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commits++
	return nil
}

func (m *Memory) Close(_ context.Context) error { return nil }

// Len reports the number of stored records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
