package keystore

import (
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaoImin/threshold-crypto/pkg/bls"
	"github.com/KaoImin/threshold-crypto/pkg/types"
)

func testShare(t *testing.T) *types.KeyShare {
	t.Helper()

	poly, err := bls.NewRandomPolynomial(mrand.New(mrand.NewSource(53)), 2)
	require.NoError(t, err)
	secret, err := poly.Secret()
	require.NoError(t, err)

	return &types.KeyShare{
		ParticipantID:   3,
		N:               4,
		Threshold:       3,
		PrivateShare:    secret,
		PublicShare:     types.NewG2Point(bls.G2Generator),
		MasterPublicKey: types.NewG2Point(bls.G2Generator),
		Qual:            []uint32{1, 2, 3, 4},
	}
}

func TestKeyStore(t *testing.T) {
	ks := NewKeyStore()

	_, err := ks.GetPrivateShare()
	assert.Error(t, err, "empty store has no private share")
	assert.Nil(t, ks.GetActiveShare())

	share := testShare(t)
	ks.SetActiveShare(share)

	got := ks.GetActiveShare()
	require.NotNil(t, got)
	assert.True(t, got.PrivateShare.Equal(share.PrivateShare))

	// The store holds its own copy.
	share.PrivateShare.SetZero()
	sk, err := ks.GetPrivateShare()
	require.NoError(t, err)
	assert.False(t, sk.IsZero())
}

func TestKeyStoreWipe(t *testing.T) {
	ks := NewKeyStore()
	ks.SetActiveShare(testShare(t))

	ks.Wipe()

	assert.Nil(t, ks.GetActiveShare())
	_, err := ks.GetPrivateShare()
	assert.Error(t, err)
}
