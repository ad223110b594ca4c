package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/KaoImin/threshold-crypto/pkg/persistence"
	"github.com/KaoImin/threshold-crypto/pkg/types"
)

// MemoryShareStore is an in-memory IShareStore for tests. All data is
// lost when the process exits. Deep copies on both sides prevent
// external mutation of stored shares.
type MemoryShareStore struct {
	mu sync.RWMutex

	shares map[uint32]*types.KeyShare
	closed bool
}

var _ persistence.IShareStore = (*MemoryShareStore)(nil)

// NewMemoryShareStore creates an empty in-memory store.
func NewMemoryShareStore() *MemoryShareStore {
	return &MemoryShareStore{
		shares: make(map[uint32]*types.KeyShare),
	}
}

// SaveKeyShare stores a deep copy of the share.
func (m *MemoryShareStore) SaveKeyShare(share *types.KeyShare) error {
	if share == nil {
		return fmt.Errorf("cannot save nil KeyShare")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("share store is closed")
	}

	m.shares[share.ParticipantID] = share.Clone()
	return nil
}

// LoadKeyShare retrieves a share by participant id.
func (m *MemoryShareStore) LoadKeyShare(participantID uint32) (*types.KeyShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("share store is closed")
	}

	share, ok := m.shares[participantID]
	if !ok {
		return nil, nil
	}
	return share.Clone(), nil
}

// ListKeyShares returns all shares in ascending participant id order.
func (m *MemoryShareStore) ListKeyShares() ([]*types.KeyShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("share store is closed")
	}

	ids := make([]uint32, 0, len(m.shares))
	for id := range m.shares {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]*types.KeyShare, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.shares[id].Clone())
	}
	return result, nil
}

// DeleteKeyShare removes a share. Idempotent.
func (m *MemoryShareStore) DeleteKeyShare(participantID uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("share store is closed")
	}

	delete(m.shares, participantID)
	return nil
}

// Close marks the store closed.
func (m *MemoryShareStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck reports whether the store is usable.
func (m *MemoryShareStore) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("share store is closed")
	}
	return nil
}
