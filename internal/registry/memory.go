package registry

import (
	"context"
	"sync"

	"github.com/starlane-io/starlane/internal/identity"
)

// Memory is an in-process Registry backed by a map, used by tests and by
// standalone demos that don't need durability.
type Memory struct {
	mu      sync.RWMutex
	records map[string]ParticleRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]ParticleRecord)}
}

// Put seeds or overwrites the record for point. Tests use this to arrange
// fixtures; production code reaches the same effect through Assign.
func (m *Memory) Put(point identity.Point, rec ParticleRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[point.String()] = rec
}

func (m *Memory) Locate(_ context.Context, point identity.Point) (ParticleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[point.String()]
	if !ok {
		return ParticleRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) GetProperties(ctx context.Context, point identity.Point) (map[string]string, error) {
	rec, err := m.Locate(ctx, point)
	if err != nil {
		return nil, err
	}
	return rec.Properties, nil
}

func (m *Memory) Assign(_ context.Context, point identity.Point, star identity.StarKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := point.String()
	rec, ok := m.records[key]
	if !ok {
		rec = ParticleRecord{Properties: make(map[string]string)}
	}
	rec.Location = identity.RemoteRoute(star)
	m.records[key] = rec
	return nil
}
