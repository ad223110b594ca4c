package dkg

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"go.uber.org/zap"

	"github.com/KaoImin/threshold-crypto/pkg/bls"
	"github.com/KaoImin/threshold-crypto/pkg/types"
)

// state tracks the one-way participant lifecycle. Every operation is
// enabled by exactly one region of this progression; calling it
// elsewhere fails with ErrOutOfOrder.
type state int

const (
	stateInit state = iota
	stateDealt
	stateCollected
	stateQualified
	stateReady
	stateWiped
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateDealt:
		return "dealt"
	case stateCollected:
		return "collected"
	case stateQualified:
		return "qualified"
	case stateReady:
		return "ready"
	case stateWiped:
		return "wiped"
	default:
		return "unknown"
	}
}

// Participant is one node's view of a DKG run. It owns its polynomial
// and the maps of received deals exclusively; commitment vectors handed
// in are copied. After Finalize it holds the private share, the public
// share and the master public key, and can sign indefinitely.
type Participant struct {
	id uint32
	n  int
	t  int

	rand   io.Reader
	logger *zap.Logger

	state state
	poly  bls.Polynomial

	receivedCommitments map[uint32][]*bls.G2Point
	receivedShares      map[uint32]*fr.Element
	qual                []uint32

	sk  *fr.Element
	pk  *bls.G2Point
	mpk *bls.G2Point
}

// Option adjusts participant construction.
type Option func(*Participant)

// WithRand injects the entropy source used for the polynomial and for
// random id assignment. Defaults to crypto/rand; a seeded reader makes
// a run fully deterministic.
func WithRand(r io.Reader) Option {
	return func(p *Participant) { p.rand = r }
}

// WithLogger attaches a logger for qualification and eviction events.
func WithLogger(l *zap.Logger) Option {
	return func(p *Participant) { p.logger = l }
}

// Deal is the participant's outbound contribution: the commitment
// vector to broadcast and one share per peer to unicast.
type Deal struct {
	Commitments []*bls.G2Point
	Shares      map[uint32]*fr.Element
}

// NewParticipant creates a participant for a t-of-n group. An id of 0
// requests a random nonzero id. The degree t-1 polynomial is sampled
// here, so a participant is committed to its secret from birth.
func NewParticipant(id uint32, n, t int, opts ...Option) (*Participant, error) {
	if n == 0 || t == 0 || t > n {
		return nil, fmt.Errorf("invalid group parameters n=%d t=%d: need 1 <= t <= n", n, t)
	}

	p := &Participant{
		id:                  id,
		n:                   n,
		t:                   t,
		rand:                rand.Reader,
		logger:              zap.NewNop(),
		state:               stateInit,
		receivedCommitments: make(map[uint32][]*bls.G2Point),
		receivedShares:      make(map[uint32]*fr.Element),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.id == 0 {
		realID, err := randomID(p.rand)
		if err != nil {
			return nil, fmt.Errorf("failed to draw random id: %w", err)
		}
		p.id = realID
	}

	poly, err := bls.NewRandomPolynomial(p.rand, t)
	if err != nil {
		return nil, fmt.Errorf("failed to sample polynomial: %w", err)
	}
	p.poly = poly

	return p, nil
}

// randomID draws a uniform id from [1, 2^32-1).
func randomID(r io.Reader) (uint32, error) {
	var buf [4]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		v := binary.BigEndian.Uint32(buf[:])
		if v != 0 && v != math.MaxUint32 {
			return v, nil
		}
	}
}

// ID returns the participant's nonzero identity.
func (p *Participant) ID() uint32 {
	return p.id
}

// Threshold returns t.
func (p *Participant) Threshold() int {
	return p.t
}

// GroupSize returns n.
func (p *Participant) GroupSize() int {
	return p.n
}

// Deal produces the commitment vector and the per-peer shares, and
// absorbs the participant's own deal: the node is its own implicit
// dealer, so its commitments and self-share land in the received maps
// like anyone else's.
func (p *Participant) Deal(peers []uint32) (*Deal, error) {
	if p.state != stateInit {
		return nil, fmt.Errorf("%w: deal in state %s", ErrOutOfOrder, p.state)
	}

	shares := make(map[uint32]*fr.Element, len(peers))
	for _, peer := range peers {
		if peer == p.id {
			continue
		}
		if peer == 0 {
			return nil, fmt.Errorf("peer id 0 is reserved")
		}
		if _, ok := shares[peer]; ok {
			return nil, fmt.Errorf("peer id %d listed twice", peer)
		}
		shares[peer] = p.poly.Eval(peer)
	}
	if len(shares) != p.n-1 {
		return nil, fmt.Errorf("got %d distinct peers, want %d", len(shares), p.n-1)
	}

	commitments := p.poly.Commit()
	p.receivedCommitments[p.id] = commitments
	p.receivedShares[p.id] = p.poly.Eval(p.id)
	p.state = stateDealt

	out := make([]*bls.G2Point, len(commitments))
	for k, c := range commitments {
		out[k] = c.Clone()
	}
	return &Deal{Commitments: out, Shares: shares}, nil
}

// ReceiveCommitments records a dealer's broadcast commitment vector.
// Commitments and the matching share may arrive in either order.
func (p *Participant) ReceiveCommitments(from uint32, commitments []*bls.G2Point) error {
	if p.state != stateDealt && p.state != stateCollected {
		return fmt.Errorf("%w: receive commitments in state %s", ErrOutOfOrder, p.state)
	}
	if len(commitments) != p.t {
		return fmt.Errorf("%w: got %d commitments from dealer %d, want %d", ErrLengthMismatch, len(commitments), from, p.t)
	}
	if _, ok := p.receivedCommitments[from]; ok {
		return fmt.Errorf("%w: dealer %d", ErrDuplicateCommitments, from)
	}

	owned := make([]*bls.G2Point, len(commitments))
	for k, c := range commitments {
		owned[k] = c.Clone()
	}
	p.receivedCommitments[from] = owned
	p.state = stateCollected
	return nil
}

// ReceiveShare records the share a dealer sent to this node.
func (p *Participant) ReceiveShare(from uint32, share *fr.Element) error {
	if p.state != stateDealt && p.state != stateCollected {
		return fmt.Errorf("%w: receive share in state %s", ErrOutOfOrder, p.state)
	}
	if _, ok := p.receivedShares[from]; ok {
		return fmt.Errorf("%w: dealer %d", ErrDuplicateShare, from)
	}

	p.receivedShares[from] = new(fr.Element).Set(share)
	p.state = stateCollected
	return nil
}

// Verify runs the Feldman check for one dealer: the received share
// against the received commitment vector, evaluated at this node's id.
// Missing data counts as failure, never as an error.
func (p *Participant) Verify(peer uint32) bool {
	commitments, ok := p.receivedCommitments[peer]
	if !ok {
		return false
	}
	share, ok := p.receivedShares[peer]
	if !ok {
		return false
	}

	valid, err := bls.VerifyShare(p.id, share, commitments)
	if err != nil {
		p.logger.Sugar().Warnw("share verification errored",
			"participant_id", p.id, "dealer_id", peer, "error", err)
		return false
	}
	return valid
}

// Qualify scans received commitment vectors in ascending dealer order
// and builds the qualified set. Dealers failing the Feldman check are
// evicted: commitments and share dropped, no way back in. The run
// aborts with ErrQualTooSmall when fewer than t dealers survive.
//
// Qualify is also accepted straight after Deal so a 1-of-1 group, which
// never receives anything, can finalize.
func (p *Participant) Qualify() ([]uint32, error) {
	if p.state != stateDealt && p.state != stateCollected {
		return nil, fmt.Errorf("%w: qualify in state %s", ErrOutOfOrder, p.state)
	}

	dealers := make([]uint32, 0, len(p.receivedCommitments))
	for id := range p.receivedCommitments {
		dealers = append(dealers, id)
	}
	sort.Slice(dealers, func(i, j int) bool { return dealers[i] < dealers[j] })

	qual := make([]uint32, 0, len(dealers))
	for _, dealer := range dealers {
		if p.Verify(dealer) {
			qual = append(qual, dealer)
			continue
		}
		delete(p.receivedCommitments, dealer)
		delete(p.receivedShares, dealer)
		p.logger.Sugar().Warnw("evicted dealer from qualified set",
			"participant_id", p.id, "dealer_id", dealer)
	}

	// Shares from dealers that never broadcast commitments are just as
	// unusable; drop them with the rest.
	for id := range p.receivedShares {
		if _, ok := p.receivedCommitments[id]; !ok {
			delete(p.receivedShares, id)
		}
	}

	if len(qual) < p.t {
		return nil, fmt.Errorf("%w: %d of %d required", ErrQualTooSmall, len(qual), p.t)
	}

	p.qual = qual
	p.state = stateQualified
	p.logger.Sugar().Infow("qualified set fixed",
		"participant_id", p.id, "qual", qual)
	return append([]uint32(nil), qual...), nil
}

// Finalize derives the key material from the qualified deals:
//
//	C_k = Σ_{j ∈ Q} A_j[k]
//	sk  = Σ_{j ∈ Q} s_j
//	pk  = Σ_k id^k * C_k
//	mpk = C_0
func (p *Participant) Finalize() error {
	if p.state != stateQualified {
		return fmt.Errorf("%w: finalize in state %s", ErrOutOfOrder, p.state)
	}

	combined := make([]*bls.G2Point, p.t)
	for k := range combined {
		combined[k] = bls.ZeroG2()
	}
	sk := new(fr.Element).SetZero()

	for _, j := range p.qual {
		commitments, ok := p.receivedCommitments[j]
		if !ok {
			return &MissingCoefficientError{ID: j}
		}
		for k := range combined {
			combined[k] = bls.AddG2(combined[k], commitments[k])
		}
		sk.Add(sk, p.receivedShares[j])
	}

	idFr := bls.ScalarFromUint32(p.id)
	power := new(fr.Element).SetOne()
	pk := bls.ZeroG2()
	for k := range combined {
		pk = bls.AddG2(pk, bls.ScalarMulG2(combined[k], power))
		power.Mul(power, idFr)
	}

	p.sk = sk
	p.pk = pk
	p.mpk = combined[0].Clone()
	p.state = stateReady
	return nil
}

// PublicShare returns pk after finalization, nil before.
func (p *Participant) PublicShare() *bls.G2Point {
	if p.state != stateReady {
		return nil
	}
	return p.pk.Clone()
}

// MasterPublicKey returns mpk after finalization, nil before.
func (p *Participant) MasterPublicKey() *bls.G2Point {
	if p.state != stateReady {
		return nil
	}
	return p.mpk.Clone()
}

// Qual returns the qualified dealer set in ascending id order.
func (p *Participant) Qual() []uint32 {
	return append([]uint32(nil), p.qual...)
}

// Sign produces this node's partial signature sk*H(msg).
func (p *Participant) Sign(msg []byte) (*bls.G1Point, error) {
	if p.state != stateReady {
		return nil, fmt.Errorf("%w: sign in state %s", ErrOutOfOrder, p.state)
	}
	return bls.Sign(p.sk, msg)
}

// KeyShare exports the finalized key material for storage.
func (p *Participant) KeyShare() (*types.KeyShare, error) {
	if p.state != stateReady {
		return nil, fmt.Errorf("%w: key share in state %s", ErrOutOfOrder, p.state)
	}
	return &types.KeyShare{
		ParticipantID:   p.id,
		N:               p.n,
		Threshold:       p.t,
		PrivateShare:    new(fr.Element).Set(p.sk),
		PublicShare:     types.NewG2Point(p.pk),
		MasterPublicKey: types.NewG2Point(p.mpk),
		Qual:            append([]uint32(nil), p.qual...),
	}, nil
}

// Wipe zeroizes the polynomial and the private share and drops all
// received material. The participant is unusable afterwards; discard
// it.
func (p *Participant) Wipe() {
	p.poly.Wipe()
	if p.sk != nil {
		p.sk.SetZero()
	}
	for id, share := range p.receivedShares {
		share.SetZero()
		delete(p.receivedShares, id)
	}
	for id := range p.receivedCommitments {
		delete(p.receivedCommitments, id)
	}
	p.qual = nil
	p.state = stateWiped
}
