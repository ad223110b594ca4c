package keystore

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/KaoImin/threshold-crypto/pkg/types"
)

// KeyStore holds a node's finalized key share with thread-safe access.
// DKG runs mutate it once; signing paths read it concurrently.
type KeyStore struct {
	mu sync.RWMutex

	active *types.KeyShare
}

// NewKeyStore creates an empty key store.
func NewKeyStore() *KeyStore {
	return &KeyStore{}
}

// SetActiveShare installs the share produced by a completed DKG.
func (ks *KeyStore) SetActiveShare(share *types.KeyShare) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	ks.active = share.Clone()
}

// GetActiveShare returns a copy of the active share, nil if none.
func (ks *KeyStore) GetActiveShare() *types.KeyShare {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	return ks.active.Clone()
}

// GetPrivateShare returns the active private scalar.
func (ks *KeyStore) GetPrivateShare() (*fr.Element, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if ks.active == nil {
		return nil, fmt.Errorf("no active key share")
	}
	return new(fr.Element).Set(ks.active.PrivateShare), nil
}

// Wipe zeroizes the stored private share and clears the store.
func (ks *KeyStore) Wipe() {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ks.active != nil && ks.active.PrivateShare != nil {
		ks.active.PrivateShare.SetZero()
	}
	ks.active = nil
}
