package types

import (
	"fmt"

	"github.com/KaoImin/threshold-crypto/pkg/bls"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Deal is the broadcast half of a dealer's output: its commitment
// vector, compressed in ascending coefficient order. The same Deal goes
// to every peer; shares travel point-to-point as ShareMessage.
type Deal struct {
	DealerID    uint32
	Commitments []G2Point
}

// ShareMessage is the unicast half: the evaluation of the dealer's
// polynomial at the recipient's id, as a 32-byte big-endian scalar.
type ShareMessage struct {
	DealerID    uint32
	RecipientID uint32
	Share       []byte
}

// NewDeal encodes a commitment vector for broadcast.
func NewDeal(dealerID uint32, commitments []*bls.G2Point) *Deal {
	encoded := make([]G2Point, len(commitments))
	for k, c := range commitments {
		encoded[k] = NewG2Point(c)
	}
	return &Deal{DealerID: dealerID, Commitments: encoded}
}

// DecodeCommitments decodes the commitment vector, rejecting malformed
// points.
func (d *Deal) DecodeCommitments() ([]*bls.G2Point, error) {
	commitments := make([]*bls.G2Point, len(d.Commitments))
	for k := range d.Commitments {
		point, err := d.Commitments[k].ToBLS()
		if err != nil {
			return nil, fmt.Errorf("malformed commitment %d from dealer %d: %w", k, d.DealerID, err)
		}
		commitments[k] = point
	}
	return commitments, nil
}

// NewShareMessage encodes a share for its recipient.
func NewShareMessage(dealerID, recipientID uint32, share *fr.Element) *ShareMessage {
	raw := share.Bytes()
	return &ShareMessage{
		DealerID:    dealerID,
		RecipientID: recipientID,
		Share:       raw[:],
	}
}

// DecodeShare decodes the scalar, rejecting encodings of the wrong
// length or outside the field.
func (m *ShareMessage) DecodeShare() (*fr.Element, error) {
	if len(m.Share) != fr.Bytes {
		return nil, fmt.Errorf("share from dealer %d has %d bytes, want %d", m.DealerID, len(m.Share), fr.Bytes)
	}
	share := new(fr.Element)
	if err := share.SetBytesCanonical(m.Share); err != nil {
		return nil, fmt.Errorf("malformed share from dealer %d: %w", m.DealerID, err)
	}
	return share, nil
}
