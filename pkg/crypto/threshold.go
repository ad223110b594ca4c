package crypto

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/blake2b"

	"github.com/KaoImin/threshold-crypto/pkg/bls"
	"github.com/KaoImin/threshold-crypto/pkg/types"
)

var (
	// ErrInsufficientShares is returned when fewer than threshold
	// partial signatures are offered for combination.
	ErrInsufficientShares = errors.New("insufficient partial signatures")

	// ErrBadSignature is returned when a combined signature fails
	// verification against the master public key.
	ErrBadSignature = errors.New("combined signature does not verify")
)

// Scheme fixes the message-to-G1 map used by signing and verification.
// Both sides of a deployment must agree on it.
type Scheme struct {
	hashToG1 func(msg []byte) (*bls.G1Point, error)
}

// NewScheme returns the default scheme, hashing with the standardized
// hash-to-curve ciphersuite.
func NewScheme() *Scheme {
	return &Scheme{hashToG1: bls.HashToG1}
}

// NewLegacyScheme returns a scheme hashing with the Blake2b-seeded
// ChaCha20 construction of LegacyHashToG1. Its points are not
// bit-compatible with the original implementation's hash.
func NewLegacyScheme() *Scheme {
	return &Scheme{
		hashToG1: func(msg []byte) (*bls.G1Point, error) {
			return bls.LegacyHashToG1(msg), nil
		},
	}
}

// HashToG1 exposes the scheme's message map.
func (s *Scheme) HashToG1(msg []byte) (*bls.G1Point, error) {
	return s.hashToG1(msg)
}

// Sign produces the partial signature sk*H(msg).
func (s *Scheme) Sign(sk *fr.Element, msg []byte) (*bls.G1Point, error) {
	if sk == nil {
		return nil, errors.New("nil secret share")
	}
	hm, err := s.hashToG1(msg)
	if err != nil {
		return nil, err
	}
	return bls.ScalarMulG1(hm, sk), nil
}

// VerifyPartial checks a partial signature against one holder's public
// share: e(sig, G2) == e(H(msg), pk).
func (s *Scheme) VerifyPartial(pk *bls.G2Point, msg []byte, sig *bls.G1Point) (bool, error) {
	hm, err := s.hashToG1(msg)
	if err != nil {
		return false, err
	}
	return bls.PairingCheck(sig, bls.G2Generator, hm, pk)
}

// VerifyCombined checks a combined signature against the master public
// key: e(sig, G2) == e(H(msg), mpk).
func (s *Scheme) VerifyCombined(mpk *bls.G2Point, msg []byte, sig *bls.G1Point) (bool, error) {
	hm, err := s.hashToG1(msg)
	if err != nil {
		return false, err
	}
	return bls.PairingCheck(sig, bls.G2Generator, hm, mpk)
}

var defaultScheme = NewScheme()

// Sign signs with the default scheme.
func Sign(sk *fr.Element, msg []byte) (*bls.G1Point, error) {
	return defaultScheme.Sign(sk, msg)
}

// VerifyPartial verifies with the default scheme.
func VerifyPartial(pk *bls.G2Point, msg []byte, sig *bls.G1Point) (bool, error) {
	return defaultScheme.VerifyPartial(pk, msg, sig)
}

// VerifyCombined verifies with the default scheme.
func VerifyCombined(mpk *bls.G2Point, msg []byte, sig *bls.G1Point) (bool, error) {
	return defaultScheme.VerifyCombined(mpk, msg, sig)
}

// Combine interpolates partial signatures at x=0 over the window
// [st, ed) of ids: σ = Σ λ_i(0) * σ_i. The window must span at least
// threshold signers; colliding ids surface as degenerate interpolation.
// Combination is hash-agnostic, so there is no Scheme receiver.
func Combine(threshold int, ids []uint32, partials []*bls.G1Point, st, ed int) (*bls.G1Point, error) {
	if len(ids) != len(partials) {
		return nil, fmt.Errorf("got %d ids for %d partial signatures", len(ids), len(partials))
	}
	if st < 0 || ed > len(ids) || st > ed {
		return nil, fmt.Errorf("combine window [%d, %d) out of range for %d signers", st, ed, len(ids))
	}
	if ed-st < threshold {
		return nil, fmt.Errorf("%w: %d of %d required", ErrInsufficientShares, ed-st, threshold)
	}

	sig := bls.ZeroG1()
	for i := st; i < ed; i++ {
		lambda, err := bls.LagrangeCoefficient(ids, i, st, ed)
		if err != nil {
			return nil, err
		}
		sig = bls.AddG1(sig, bls.ScalarMulG1(partials[i], lambda))
	}
	return sig, nil
}

// CombineAll combines over the full signer list.
func CombineAll(threshold int, ids []uint32, partials []*bls.G1Point) (*bls.G1Point, error) {
	return Combine(threshold, ids, partials, 0, len(ids))
}

// CombineAndVerify combines and then checks the result against the
// master public key, so a caller never forwards a bad group signature.
func CombineAndVerify(s *Scheme, threshold int, ids []uint32, partials []*bls.G1Point, msg []byte, mpk *bls.G2Point) (*bls.G1Point, error) {
	sig, err := CombineAll(threshold, ids, partials)
	if err != nil {
		return nil, err
	}
	ok, err := s.VerifyCombined(mpk, msg, sig)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBadSignature
	}
	return sig, nil
}

// ComputeMasterPublicKey assembles mpk from per-dealer commitment
// vectors: the sum of the constant-term commitments.
func ComputeMasterPublicKey(allCommitments [][]*bls.G2Point) (*bls.G2Point, error) {
	mpk := bls.ZeroG2()
	for _, commitments := range allCommitments {
		if len(commitments) == 0 {
			continue
		}
		mpk = bls.AddG2(mpk, commitments[0])
	}
	if mpk.IsZero() {
		return nil, errors.New("computed master public key is zero")
	}
	return mpk, nil
}

// HashCommitment digests a wire commitment vector. Transports can
// acknowledge this instead of echoing the full vector.
func HashCommitment(commitments []types.G2Point) [32]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, c := range commitments {
		h.Write(c.CompressedBytes)
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}
