package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaoImin/threshold-crypto/pkg/bls"
	"github.com/KaoImin/threshold-crypto/pkg/dkg"
)

// Cluster is a fully-exchanged in-process DKG group: every participant
// has dealt, received every other deal, qualified and finalized. Tests
// use it as a signing-ready fixture.
type Cluster struct {
	IDs          []uint32
	Threshold    int
	Participants []*dkg.Participant
}

// NewCluster runs a complete honest DKG over the given ids and fails
// the test on any protocol error.
func NewCluster(t *testing.T, ids []uint32, threshold int, opts ...dkg.Option) *Cluster {
	t.Helper()

	n := len(ids)
	cluster := &Cluster{
		IDs:          append([]uint32(nil), ids...),
		Threshold:    threshold,
		Participants: make([]*dkg.Participant, n),
	}

	index := make(map[uint32]int, n)
	for i, id := range ids {
		p, err := dkg.NewParticipant(id, n, threshold, opts...)
		require.NoError(t, err, "participant %d construction", id)
		cluster.Participants[i] = p
		index[id] = i
	}

	// Every node deals; commitments are broadcast, shares unicast.
	for i, p := range cluster.Participants {
		deal, err := p.Deal(ids)
		require.NoError(t, err, "participant %d deal", ids[i])

		for peer, share := range deal.Shares {
			recipient := cluster.Participants[index[peer]]
			require.NoError(t, recipient.ReceiveCommitments(p.ID(), deal.Commitments))
			require.NoError(t, recipient.ReceiveShare(p.ID(), share))
		}
	}

	for i, p := range cluster.Participants {
		qual, err := p.Qualify()
		require.NoError(t, err, "participant %d qualify", ids[i])
		require.Len(t, qual, n, "honest run must qualify everyone")
		require.NoError(t, p.Finalize(), "participant %d finalize", ids[i])
	}

	mpk := cluster.Participants[0].MasterPublicKey()
	for i, p := range cluster.Participants[1:] {
		require.True(t, mpk.Equal(p.MasterPublicKey()),
			"participant %d disagrees on the master public key", ids[i+1])
	}

	return cluster
}

// MasterPublicKey returns the group key as seen by the first
// participant; NewCluster guarantees all views agree.
func (c *Cluster) MasterPublicKey() *bls.G2Point {
	return c.Participants[0].MasterPublicKey()
}

// PartialSignatures collects every participant's partial signature over
// msg, in cluster id order.
func (c *Cluster) PartialSignatures(t *testing.T, msg []byte) []*bls.G1Point {
	t.Helper()

	partials := make([]*bls.G1Point, len(c.Participants))
	for i, p := range c.Participants {
		sig, err := p.Sign(msg)
		require.NoError(t, err, "participant %d sign", c.IDs[i])
		partials[i] = sig
	}
	return partials
}
