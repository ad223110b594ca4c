package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/KaoImin/threshold-crypto/pkg/types"
)

// MarshalKeyShare serializes a key share to JSON. fr.Element carries its
// own JSON representation; points are stored as their compressed bytes.
func MarshalKeyShare(share *types.KeyShare) ([]byte, error) {
	if share == nil {
		return nil, fmt.Errorf("cannot marshal nil KeyShare")
	}

	data, err := json.Marshal(share)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal KeyShare to JSON: %w", err)
	}
	return data, nil
}

// UnmarshalKeyShare deserializes a key share from JSON.
func UnmarshalKeyShare(data []byte) (*types.KeyShare, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var share types.KeyShare
	if err := json.Unmarshal(data, &share); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to KeyShare: %w", err)
	}
	return &share, nil
}
