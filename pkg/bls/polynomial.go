package bls

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/polynomial"
)

var (
	// ErrNoPolyCoefficient is returned for operations on a polynomial
	// without coefficients.
	ErrNoPolyCoefficient = errors.New("polynomial has no coefficients")

	// ErrDegenerateInterpolation is returned when interpolation ids
	// collide, which makes a Lagrange denominator zero.
	ErrDegenerateInterpolation = errors.New("degenerate interpolation: duplicate participant ids")
)

// Polynomial is a degree t-1 polynomial over the scalar field, stored as
// ascending coefficients. The constant term is the dealt secret.
type Polynomial []fr.Element

// NewRandomPolynomial samples t independent uniform coefficients from
// the given entropy source.
func NewRandomPolynomial(rand io.Reader, t int) (Polynomial, error) {
	if t < 1 {
		return nil, ErrNoPolyCoefficient
	}

	coeffs := make(Polynomial, t)
	for i := range coeffs {
		s, err := RandomScalar(rand)
		if err != nil {
			return nil, fmt.Errorf("failed to sample coefficient %d: %w", i, err)
		}
		coeffs[i].Set(s)
	}
	return coeffs, nil
}

// Threshold returns the number of coefficients, i.e. the t of a
// t-of-n sharing built from this polynomial.
func (p Polynomial) Threshold() int {
	return len(p)
}

// Secret returns the constant term.
func (p Polynomial) Secret() (*fr.Element, error) {
	if len(p) == 0 {
		return nil, ErrNoPolyCoefficient
	}
	return new(fr.Element).Set(&p[0]), nil
}

// Eval evaluates the polynomial at the integer point x. Eval(0) yields
// the constant term.
func (p Polynomial) Eval(x uint32) *fr.Element {
	xFr := ScalarFromUint32(x)
	res := polynomial.Polynomial(p).Eval(xFr)
	return &res
}

// Commit returns the Feldman commitment vector [a_k * G2] in coefficient
// order.
func (p Polynomial) Commit() []*G2Point {
	commitments := make([]*G2Point, len(p))
	for k := range p {
		commitments[k] = ScalarMulG2(G2Generator, &p[k])
	}
	return commitments
}

// Wipe zeroes every coefficient in place.
func (p Polynomial) Wipe() {
	for k := range p {
		p[k].SetZero()
	}
}

// VerifyShare checks a received share against a dealer's commitment
// vector: share * G2 == Σ_k id^k * A[k]. The sum is computed with a
// multi-exponentiation over the powers of id.
func VerifyShare(id uint32, share *fr.Element, commitments []*G2Point) (bool, error) {
	if len(commitments) == 0 {
		return false, errors.New("no commitments provided")
	}
	if share == nil {
		return false, errors.New("share is nil")
	}

	lhs := ScalarMulG2(G2Generator, share)

	idFr := ScalarFromUint32(id)
	powers := make([]fr.Element, len(commitments))
	powers[0].SetOne()
	for k := 1; k < len(commitments); k++ {
		powers[k].Mul(&powers[k-1], idFr)
	}

	points := make([]bls12381.G2Affine, len(commitments))
	for k, c := range commitments {
		if c == nil || c.point == nil {
			return false, fmt.Errorf("nil commitment at index %d", k)
		}
		points[k] = *c.point
	}

	var rhs bls12381.G2Affine
	if _, err := rhs.MultiExp(points, powers, ecc.MultiExpConfig{}); err != nil {
		return false, fmt.Errorf("failed to combine commitments: %w", err)
	}

	return lhs.point.Equal(&rhs), nil
}

// LagrangeCoefficient computes the Lagrange coefficient at x=0 for
// ids[exc] over the window [st, ed) of ids:
//
//	λ = Π_{i ∈ [st,ed), i ≠ exc} (-ids[i]) / (ids[exc] - ids[i])
//
// Differences are computed in the field, so the sign handling of the
// integer formulation reduces to a single negation.
func LagrangeCoefficient(ids []uint32, exc, st, ed int) (*fr.Element, error) {
	if st < 0 || ed > len(ids) || st > ed {
		return nil, fmt.Errorf("lagrange window [%d, %d) out of range for %d ids", st, ed, len(ids))
	}
	if exc < st || exc >= ed {
		return nil, fmt.Errorf("excluded index %d outside window [%d, %d)", exc, st, ed)
	}

	k := ScalarFromUint32(ids[exc])
	num := new(fr.Element).SetOne()
	den := new(fr.Element).SetOne()

	for i := st; i < ed; i++ {
		if i == exc {
			continue
		}
		j := ScalarFromUint32(ids[i])

		// numerator *= (0 - ids[i])
		num.Mul(num, new(fr.Element).Neg(j))

		// denominator *= (ids[exc] - ids[i])
		diff := new(fr.Element).Sub(k, j)
		if diff.IsZero() {
			return nil, ErrDegenerateInterpolation
		}
		den.Mul(den, diff)
	}

	lambda := new(fr.Element).Inverse(den)
	lambda.Mul(lambda, num)
	return lambda, nil
}

// RecoverSecret interpolates the scalar shared among the given holders
// at x=0. Intended for tests and offline recovery; a live signer group
// never reconstructs the master secret.
func RecoverSecret(shares map[uint32]*fr.Element) (*fr.Element, error) {
	if len(shares) == 0 {
		return nil, errors.New("no shares provided")
	}

	ids := make([]uint32, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	secret := new(fr.Element).SetZero()
	for i, id := range ids {
		lambda, err := LagrangeCoefficient(ids, i, 0, len(ids))
		if err != nil {
			return nil, err
		}
		term := new(fr.Element).Mul(lambda, shares[id])
		secret.Add(secret, term)
	}
	return secret, nil
}
