package bls

import (
	mrand "math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

// FuzzVerifyShare checks the Feldman relation from both sides: the
// honest share always verifies, any additive tampering never does.
func FuzzVerifyShare(f *testing.F) {
	f.Add(int64(1), uint32(1), uint64(1))
	f.Add(int64(42), uint32(7), uint64(1<<63))
	f.Add(int64(-9), uint32(4294967294), uint64(3))

	f.Fuzz(func(t *testing.T, seed int64, id uint32, delta uint64) {
		if id == 0 {
			id = 1
		}

		poly, err := NewRandomPolynomial(mrand.New(mrand.NewSource(seed)), 3)
		require.NoError(t, err)
		commitments := poly.Commit()

		share := poly.Eval(id)
		ok, err := VerifyShare(id, share, commitments)
		require.NoError(t, err)
		require.True(t, ok, "honest share must verify")

		if delta == 0 {
			return
		}
		tampered := new(fr.Element).Set(share)
		tampered.Add(tampered, new(fr.Element).SetUint64(delta))
		ok, err = VerifyShare(id, tampered, commitments)
		require.NoError(t, err)
		require.False(t, ok, "tampered share must not verify")
	})
}
