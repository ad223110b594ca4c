package types

import (
	"bytes"

	"github.com/KaoImin/threshold-crypto/pkg/bls"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// G1Point is the wire form of a G1 element: its compressed encoding
// (48 bytes). Signatures travel in this form.
type G1Point struct {
	CompressedBytes []byte
}

// G2Point is the wire form of a G2 element: its compressed encoding
// (96 bytes). Commitments and public keys travel in this form.
type G2Point struct {
	CompressedBytes []byte
}

// NewG1Point captures the compressed encoding of a group element.
func NewG1Point(p *bls.G1Point) G1Point {
	return G1Point{CompressedBytes: p.Marshal()}
}

// NewG2Point captures the compressed encoding of a group element.
func NewG2Point(p *bls.G2Point) G2Point {
	return G2Point{CompressedBytes: p.Marshal()}
}

// ZeroG1Point is the encoded G1 identity.
func ZeroG1Point() *G1Point {
	p := NewG1Point(bls.ZeroG1())
	return &p
}

// ZeroG2Point is the encoded G2 identity.
func ZeroG2Point() *G2Point {
	p := NewG2Point(bls.ZeroG2())
	return &p
}

// ToBLS decodes the point, rejecting encodings off the curve or outside
// the prime-order subgroup.
func (p *G1Point) ToBLS() (*bls.G1Point, error) {
	return bls.G1PointFromCompressedBytes(p.CompressedBytes)
}

// ToBLS decodes the point.
func (p *G2Point) ToBLS() (*bls.G2Point, error) {
	return bls.G2PointFromCompressedBytes(p.CompressedBytes)
}

// IsEqual compares the wire encodings. Compressed encodings are
// canonical, so byte equality is group-element equality.
func (p *G1Point) IsEqual(other *G1Point) bool {
	return bytes.Equal(p.CompressedBytes, other.CompressedBytes)
}

// IsEqual compares the wire encodings.
func (p *G2Point) IsEqual(other *G2Point) bool {
	return bytes.Equal(p.CompressedBytes, other.CompressedBytes)
}

// KeyShare is a participant's finalized DKG output: the private share,
// the matching public share, the group master public key, and the
// qualified dealer set that produced them.
type KeyShare struct {
	ParticipantID   uint32
	N               int
	Threshold       int
	PrivateShare    *fr.Element
	PublicShare     G2Point
	MasterPublicKey G2Point
	Qual            []uint32
}

// Clone returns an independent deep copy.
func (ks *KeyShare) Clone() *KeyShare {
	if ks == nil {
		return nil
	}
	cp := &KeyShare{
		ParticipantID:   ks.ParticipantID,
		N:               ks.N,
		Threshold:       ks.Threshold,
		PublicShare:     G2Point{CompressedBytes: append([]byte(nil), ks.PublicShare.CompressedBytes...)},
		MasterPublicKey: G2Point{CompressedBytes: append([]byte(nil), ks.MasterPublicKey.CompressedBytes...)},
		Qual:            append([]uint32(nil), ks.Qual...),
	}
	if ks.PrivateShare != nil {
		cp.PrivateShare = new(fr.Element).Set(ks.PrivateShare)
	}
	return cp
}
