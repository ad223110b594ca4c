package bls

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// G1Point wraps a point in the prime-order subgroup of BLS12-381 G1.
// Signatures and partial signatures live here.
type G1Point struct {
	point *bls12381.G1Affine
}

// G2Point wraps a point in the prime-order subgroup of BLS12-381 G2.
// Public keys and polynomial commitments live here.
type G2Point struct {
	point *bls12381.G2Affine
}

// NewG1Point wraps a gnark G1Affine point.
func NewG1Point(p *bls12381.G1Affine) *G1Point {
	return &G1Point{point: p}
}

// NewG2Point wraps a gnark G2Affine point.
func NewG2Point(p *bls12381.G2Affine) *G2Point {
	return &G2Point{point: p}
}

// ZeroG1 returns the G1 identity point.
func ZeroG1() *G1Point {
	return NewG1Point(new(bls12381.G1Affine).SetInfinity())
}

// ZeroG2 returns the G2 identity point.
func ZeroG2() *G2Point {
	return NewG2Point(new(bls12381.G2Affine).SetInfinity())
}

// Marshal serializes the point in compressed form (48 bytes).
func (p *G1Point) Marshal() []byte {
	if p == nil || p.point == nil {
		return make([]byte, bls12381.SizeOfG1AffineCompressed)
	}
	raw := p.point.Bytes()
	return raw[:]
}

// Unmarshal parses a compressed G1 encoding. Curve and subgroup
// membership are checked by SetBytes.
func (p *G1Point) Unmarshal(data []byte) error {
	if p.point == nil {
		p.point = new(bls12381.G1Affine)
	}
	_, err := p.point.SetBytes(data)
	return err
}

// Marshal serializes the point in compressed form (96 bytes).
func (p *G2Point) Marshal() []byte {
	if p == nil || p.point == nil {
		return make([]byte, bls12381.SizeOfG2AffineCompressed)
	}
	raw := p.point.Bytes()
	return raw[:]
}

// Unmarshal parses a compressed G2 encoding.
func (p *G2Point) Unmarshal(data []byte) error {
	if p.point == nil {
		p.point = new(bls12381.G2Affine)
	}
	_, err := p.point.SetBytes(data)
	return err
}

// IsZero reports whether the point is the identity.
func (p *G1Point) IsZero() bool {
	return p == nil || p.point == nil || p.point.IsInfinity()
}

// IsZero reports whether the point is the identity.
func (p *G2Point) IsZero() bool {
	return p == nil || p.point == nil || p.point.IsInfinity()
}

// Equal reports whether two G1 points are the same group element.
func (p *G1Point) Equal(other *G1Point) bool {
	if p == nil || p.point == nil || other == nil || other.point == nil {
		return false
	}
	return p.point.Equal(other.point)
}

// Equal reports whether two G2 points are the same group element.
func (p *G2Point) Equal(other *G2Point) bool {
	if p == nil || p.point == nil || other == nil || other.point == nil {
		return false
	}
	return p.point.Equal(other.point)
}

// Clone returns an independent copy of the point.
func (p *G1Point) Clone() *G1Point {
	if p == nil || p.point == nil {
		return ZeroG1()
	}
	cp := *p.point
	return NewG1Point(&cp)
}

// Clone returns an independent copy of the point.
func (p *G2Point) Clone() *G2Point {
	if p == nil || p.point == nil {
		return ZeroG2()
	}
	cp := *p.point
	return NewG2Point(&cp)
}

// ToAffine exposes the underlying gnark representation for pairing input.
func (p *G1Point) ToAffine() *bls12381.G1Affine {
	return p.point
}

// ToAffine exposes the underlying gnark representation for pairing input.
func (p *G2Point) ToAffine() *bls12381.G2Affine {
	return p.point
}

// G1PointFromCompressedBytes parses a compressed G1 encoding.
func G1PointFromCompressedBytes(data []byte) (*G1Point, error) {
	point := new(bls12381.G1Affine)
	if _, err := point.SetBytes(data); err != nil {
		return nil, err
	}
	return NewG1Point(point), nil
}

// G2PointFromCompressedBytes parses a compressed G2 encoding.
func G2PointFromCompressedBytes(data []byte) (*G2Point, error) {
	point := new(bls12381.G2Affine)
	if _, err := point.SetBytes(data); err != nil {
		return nil, err
	}
	return NewG2Point(point), nil
}
