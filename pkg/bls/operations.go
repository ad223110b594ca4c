package bls

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// hashToG1DST is the RFC 9380 ciphersuite tag used for message hashing.
const hashToG1DST = "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_"

var (
	// G1Generator is the fixed generator of the G1 subgroup.
	G1Generator *G1Point
	// G2Generator is the fixed generator of the G2 subgroup.
	G2Generator *G2Point
)

func init() {
	_, _, g1Gen, g2Gen := bls12381.Generators()
	G1Generator = NewG1Point(&g1Gen)
	G2Generator = NewG2Point(&g2Gen)
}

// RandomScalar samples a uniform field element from the given entropy
// source. A 64-byte read is wide-reduced modulo the group order, so the
// bias against a straight 32-byte sample is negligible.
func RandomScalar(rand io.Reader) (*fr.Element, error) {
	var buf [64]byte
	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return nil, fmt.Errorf("failed to read entropy for scalar: %w", err)
	}
	return new(fr.Element).SetBytes(buf[:]), nil
}

// ScalarFromUint32 lifts a 32-bit id into the scalar field.
func ScalarFromUint32(v uint32) *fr.Element {
	return new(fr.Element).SetUint64(uint64(v))
}

// ScalarFromInt64 lifts a signed integer into the scalar field. Negative
// values map to the additive inverse of their absolute value.
func ScalarFromInt64(v int64) *fr.Element {
	return new(fr.Element).SetInt64(v)
}

// ScalarMulG1 computes s*P on G1.
func ScalarMulG1(p *G1Point, s *fr.Element) *G1Point {
	if p == nil || p.point == nil || s == nil {
		return ZeroG1()
	}
	k := new(big.Int)
	s.BigInt(k)
	return NewG1Point(new(bls12381.G1Affine).ScalarMultiplication(p.point, k))
}

// ScalarMulG2 computes s*P on G2.
func ScalarMulG2(p *G2Point, s *fr.Element) *G2Point {
	if p == nil || p.point == nil || s == nil {
		return ZeroG2()
	}
	k := new(big.Int)
	s.BigInt(k)
	return NewG2Point(new(bls12381.G2Affine).ScalarMultiplication(p.point, k))
}

// AddG1 adds two G1 points.
func AddG1(a, b *G1Point) *G1Point {
	if a == nil || a.point == nil {
		return b.Clone()
	}
	if b == nil || b.point == nil {
		return a.Clone()
	}
	return NewG1Point(new(bls12381.G1Affine).Add(a.point, b.point))
}

// AddG2 adds two G2 points.
func AddG2(a, b *G2Point) *G2Point {
	if a == nil || a.point == nil {
		return b.Clone()
	}
	if b == nil || b.point == nil {
		return a.Clone()
	}
	return NewG2Point(new(bls12381.G2Affine).Add(a.point, b.point))
}

// HashToG1 maps a message to G1 with the standardized hash-to-curve
// construction under the package ciphersuite tag.
func HashToG1(msg []byte) (*G1Point, error) {
	point, err := bls12381.HashToG1(msg, []byte(hashToG1DST))
	if err != nil {
		return nil, fmt.Errorf("hash to G1 failed: %w", err)
	}
	return NewG1Point(&point), nil
}

// LegacyHashToG1 maps a message to G1 with the original protocol's
// construction shape: a 32-byte Blake2b digest seeds a ChaCha20
// keystream, and the sampled scalar s gives the point s*G1. The result
// is not bit-compatible with the original implementation. Deterministic
// and uniform, but not domain-separated; new deployments should prefer
// HashToG1.
func LegacyHashToG1(msg []byte) *G1Point {
	seed := blake2b.Sum256(msg)

	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// Key and nonce sizes are fixed above; this cannot fail.
		panic(err)
	}

	var buf [64]byte
	stream.XORKeyStream(buf[:], buf[:])
	s := new(fr.Element).SetBytes(buf[:])
	return ScalarMulG1(G1Generator, s)
}

// Sign produces the partial signature sk*H(msg) in G1.
func Sign(sk *fr.Element, msg []byte) (*G1Point, error) {
	if sk == nil {
		return nil, errors.New("nil secret share")
	}
	hm, err := HashToG1(msg)
	if err != nil {
		return nil, err
	}
	return ScalarMulG1(hm, sk), nil
}

// PairingCheck reports whether e(a, b) == e(c, d).
func PairingCheck(a *G1Point, b *G2Point, c *G1Point, d *G2Point) (bool, error) {
	if a == nil || a.point == nil || b == nil || b.point == nil ||
		c == nil || c.point == nil || d == nil || d.point == nil {
		return false, errors.New("nil pairing input")
	}

	left, err := bls12381.Pair([]bls12381.G1Affine{*a.point}, []bls12381.G2Affine{*b.point})
	if err != nil {
		return false, fmt.Errorf("pairing failed: %w", err)
	}
	right, err := bls12381.Pair([]bls12381.G1Affine{*c.point}, []bls12381.G2Affine{*d.point})
	if err != nil {
		return false, fmt.Errorf("pairing failed: %w", err)
	}
	return left.Equal(&right), nil
}
