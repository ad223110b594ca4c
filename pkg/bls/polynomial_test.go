package bls

import (
	mrand "math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func polyFromInts(coeffs ...int64) Polynomial {
	p := make(Polynomial, len(coeffs))
	for i, c := range coeffs {
		p[i].SetInt64(c)
	}
	return p
}

func TestPolynomialEval(t *testing.T) {
	t.Run("ConstantTermAtZero", func(t *testing.T) {
		// P(x) = 5
		p := polyFromInts(5)
		assert.Equal(t, uint64(5), p.Eval(0).Uint64())
		assert.Equal(t, uint64(5), p.Eval(100).Uint64())
	})

	t.Run("Linear", func(t *testing.T) {
		// P(x) = 3 + 2x
		p := polyFromInts(3, 2)
		assert.Equal(t, uint64(3), p.Eval(0).Uint64())
		assert.Equal(t, uint64(5), p.Eval(1).Uint64())
		assert.Equal(t, uint64(13), p.Eval(5).Uint64())
	})

	t.Run("Quadratic", func(t *testing.T) {
		// P(x) = 1 + 2x + 3x²
		p := polyFromInts(1, 2, 3)
		assert.Equal(t, uint64(1), p.Eval(0).Uint64())
		assert.Equal(t, uint64(6), p.Eval(1).Uint64())
		assert.Equal(t, uint64(17), p.Eval(2).Uint64())
		assert.Equal(t, uint64(34), p.Eval(3).Uint64())
	})

	t.Run("MatchesManualFieldArithmetic", func(t *testing.T) {
		// P(x) = 7 + 3x + 5x² at x = 4: 7 + 12 + 80 = 99
		p := polyFromInts(7, 3, 5)
		expected := new(fr.Element).SetInt64(99)
		assert.True(t, p.Eval(4).Equal(expected))
	})
}

func TestNewRandomPolynomial(t *testing.T) {
	rng := mrand.New(mrand.NewSource(3))

	p, err := NewRandomPolynomial(rng, 4)
	require.NoError(t, err)
	require.Len(t, p, 4)
	assert.Equal(t, 4, p.Threshold())

	secret, err := p.Secret()
	require.NoError(t, err)
	assert.True(t, secret.Equal(p.Eval(0)), "Eval(0) must yield the constant term")

	_, err = NewRandomPolynomial(rng, 0)
	assert.ErrorIs(t, err, ErrNoPolyCoefficient)

	// Same seed, same polynomial.
	p2, err := NewRandomPolynomial(mrand.New(mrand.NewSource(9)), 3)
	require.NoError(t, err)
	p3, err := NewRandomPolynomial(mrand.New(mrand.NewSource(9)), 3)
	require.NoError(t, err)
	for i := range p2 {
		assert.True(t, p2[i].Equal(&p3[i]))
	}
}

func TestCommitAndVerifyShare(t *testing.T) {
	rng := mrand.New(mrand.NewSource(11))
	p, err := NewRandomPolynomial(rng, 3)
	require.NoError(t, err)

	commitments := p.Commit()
	require.Len(t, commitments, 3)

	secret, err := p.Secret()
	require.NoError(t, err)
	assert.True(t, commitments[0].Equal(ScalarMulG2(G2Generator, secret)),
		"first commitment must bind the constant term")

	// Every honest share satisfies the Feldman check.
	for _, id := range []uint32{1, 2, 7, 1000, 4294967294} {
		share := p.Eval(id)
		ok, err := VerifyShare(id, share, commitments)
		require.NoError(t, err)
		assert.True(t, ok, "honest share for id %d must verify", id)
	}

	// A tampered share fails it.
	tampered := p.Eval(3)
	tampered.Add(tampered, new(fr.Element).SetOne())
	ok, err := VerifyShare(3, tampered, commitments)
	require.NoError(t, err)
	assert.False(t, ok, "tampered share must fail verification")

	// A share evaluated at the wrong id fails too.
	ok, err = VerifyShare(5, p.Eval(6), commitments)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyShare(1, nil, commitments)
	assert.Error(t, err)
	_, err = VerifyShare(1, p.Eval(1), nil)
	assert.Error(t, err)
}

func TestLagrangeCoefficient(t *testing.T) {
	ids := []uint32{1, 2, 3}

	t.Run("KnownValues", func(t *testing.T) {
		// λ_1(0) = (0-2)(0-3)/((1-2)(1-3)) = 6/2 = 3
		l1, err := LagrangeCoefficient(ids, 0, 0, 3)
		require.NoError(t, err)
		assert.True(t, l1.Equal(new(fr.Element).SetInt64(3)))

		// λ_2(0) = (0-1)(0-3)/((2-1)(2-3)) = 3/-1 = -3
		l2, err := LagrangeCoefficient(ids, 1, 0, 3)
		require.NoError(t, err)
		assert.True(t, l2.Equal(new(fr.Element).SetInt64(-3)))

		// λ_3(0) = (0-1)(0-2)/((3-1)(3-2)) = 2/2 = 1
		l3, err := LagrangeCoefficient(ids, 2, 0, 3)
		require.NoError(t, err)
		assert.True(t, l3.Equal(new(fr.Element).SetInt64(1)))

		// Partition of unity.
		sum := new(fr.Element).Add(l1, l2)
		sum.Add(sum, l3)
		assert.True(t, sum.IsOne())
	})

	t.Run("SubWindow", func(t *testing.T) {
		// Over the window {2, 3}: λ_2(0) = (0-3)/(2-3) = 3
		l, err := LagrangeCoefficient(ids, 1, 1, 3)
		require.NoError(t, err)
		assert.True(t, l.Equal(new(fr.Element).SetInt64(3)))
	})

	t.Run("DuplicateIDs", func(t *testing.T) {
		_, err := LagrangeCoefficient([]uint32{5, 9, 5}, 0, 0, 3)
		assert.ErrorIs(t, err, ErrDegenerateInterpolation)
	})

	t.Run("BadWindow", func(t *testing.T) {
		_, err := LagrangeCoefficient(ids, 0, 0, 4)
		assert.Error(t, err)
		_, err = LagrangeCoefficient(ids, 2, 0, 2)
		assert.Error(t, err, "excluded index must lie inside the window")
	})
}

func TestRecoverSecret(t *testing.T) {
	rng := mrand.New(mrand.NewSource(17))
	p, err := NewRandomPolynomial(rng, 3)
	require.NoError(t, err)

	shares := map[uint32]*fr.Element{
		2: p.Eval(2),
		5: p.Eval(5),
		9: p.Eval(9),
	}

	secret, err := RecoverSecret(shares)
	require.NoError(t, err)

	expected, err := p.Secret()
	require.NoError(t, err)
	assert.True(t, secret.Equal(expected), "three shares of a degree-2 polynomial determine the secret")

	// More shares than necessary still interpolate to the same point.
	shares[11] = p.Eval(11)
	secret2, err := RecoverSecret(shares)
	require.NoError(t, err)
	assert.True(t, secret2.Equal(expected))

	_, err = RecoverSecret(nil)
	assert.Error(t, err)
}

func TestPolynomialWipe(t *testing.T) {
	p, err := NewRandomPolynomial(mrand.New(mrand.NewSource(23)), 3)
	require.NoError(t, err)

	p.Wipe()
	for i := range p {
		assert.True(t, p[i].IsZero(), "coefficient %d must be zeroed", i)
	}
}
