package memory

import (
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaoImin/threshold-crypto/pkg/bls"
	"github.com/KaoImin/threshold-crypto/pkg/types"
)

func testShare(t *testing.T, id uint32) *types.KeyShare {
	t.Helper()

	poly, err := bls.NewRandomPolynomial(mrand.New(mrand.NewSource(int64(id))), 2)
	require.NoError(t, err)
	secret, err := poly.Secret()
	require.NoError(t, err)

	return &types.KeyShare{
		ParticipantID:   id,
		N:               3,
		Threshold:       2,
		PrivateShare:    secret,
		PublicShare:     types.NewG2Point(bls.ScalarMulG2(bls.G2Generator, secret)),
		MasterPublicKey: types.NewG2Point(bls.G2Generator),
		Qual:            []uint32{1, 2, 3},
	}
}

func TestMemoryShareStore(t *testing.T) {
	store := NewMemoryShareStore()
	require.NoError(t, store.HealthCheck())

	// Absent share is nil, not an error.
	got, err := store.LoadKeyShare(1)
	require.NoError(t, err)
	assert.Nil(t, got)

	share := testShare(t, 1)
	require.NoError(t, store.SaveKeyShare(share))

	got, err = store.LoadKeyShare(1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.PrivateShare.Equal(share.PrivateShare))

	// The store keeps its own copy.
	share.PrivateShare.SetZero()
	got, err = store.LoadKeyShare(1)
	require.NoError(t, err)
	assert.False(t, got.PrivateShare.IsZero())

	assert.Error(t, store.SaveKeyShare(nil))
}

func TestMemoryShareStoreList(t *testing.T) {
	store := NewMemoryShareStore()

	for _, id := range []uint32{42, 7, 19} {
		require.NoError(t, store.SaveKeyShare(testShare(t, id)))
	}

	shares, err := store.ListKeyShares()
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assert.Equal(t, uint32(7), shares[0].ParticipantID)
	assert.Equal(t, uint32(19), shares[1].ParticipantID)
	assert.Equal(t, uint32(42), shares[2].ParticipantID)

	require.NoError(t, store.DeleteKeyShare(19))
	require.NoError(t, store.DeleteKeyShare(19), "delete is idempotent")

	shares, err = store.ListKeyShares()
	require.NoError(t, err)
	assert.Len(t, shares, 2)
}

func TestMemoryShareStoreClosed(t *testing.T) {
	store := NewMemoryShareStore()
	require.NoError(t, store.Close())

	assert.Error(t, store.HealthCheck())
	assert.Error(t, store.SaveKeyShare(testShare(t, 1)))
	_, err := store.LoadKeyShare(1)
	assert.Error(t, err)
	_, err = store.ListKeyShares()
	assert.Error(t, err)
	assert.Error(t, store.DeleteKeyShare(1))
}
