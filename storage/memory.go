package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory keeps everything in process. Tests and dry runs use it.
type Memory struct {
	mu    sync.Mutex
	kv    map[string]string
	snaps map[string]memSnapshot
}

type memSnapshot struct {
	info SnapshotInfo
	doc  []byte
}

func NewMemory() *Memory {
	return &Memory{kv: map[string]string{}, snaps: map[string]memSnapshot{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, nil
}

func (m *Memory) SetMany(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.kv[k] = v
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.kv, k)
	}
	return nil
}

func (m *Memory) SaveSnapshot(_ context.Context, info SnapshotInfo, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snaps[info.ID]; ok {
		return fmt.Errorf("snapshot %s already exists", info.ID)
	}
	m.snaps[info.ID] = memSnapshot{info: info, doc: append([]byte(nil), doc...)}
	return nil
}

func (m *Memory) ListSnapshots(_ context.Context) ([]SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func (m *Memory) sorted() []SnapshotInfo {
	out := make([]SnapshotInfo, 0, len(m.snaps))
	for _, s := range m.snaps {
		out = append(out, s.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *Memory) GetSnapshot(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[id]
	if !ok {
		return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, id)
	}
	return append([]byte(nil), s.doc...), nil
}

func (m *Memory) PruneSnapshots(_ context.Context, keep int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	if keep < 0 {
		keep = 0
	}
	n := 0
	for i := keep; i < len(all); i++ {
		delete(m.snaps, all[i].ID)
		n++
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
