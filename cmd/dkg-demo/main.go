package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/KaoImin/threshold-crypto/pkg/bls"
	"github.com/KaoImin/threshold-crypto/pkg/crypto"
	"github.com/KaoImin/threshold-crypto/pkg/dkg"
	"github.com/KaoImin/threshold-crypto/pkg/logger"
	"github.com/KaoImin/threshold-crypto/pkg/persistence/badger"
	"github.com/KaoImin/threshold-crypto/pkg/types"
)

func main() {
	app := &cli.App{
		Name:  "dkg-demo",
		Usage: "In-process distributed key generation and threshold signing demo",
		Description: `Simulates a full t-of-n DKG run inside one process: every
participant deals, cross-delivers commitments and shares, qualifies and
finalizes. The resulting shares then produce a threshold BLS signature
which is verified against the group master public key.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "nodes",
				Aliases: []string{"n"},
				Value:   4,
				Usage:   "Number of participants",
				EnvVars: []string{"DKG_NODES"},
			},
			&cli.IntFlag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Signing threshold (default: ceil(2n/3))",
				EnvVars: []string{"DKG_THRESHOLD"},
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Value:   "hello",
				Usage:   "Message to threshold-sign",
				EnvVars: []string{"DKG_MESSAGE"},
			},
			&cli.StringFlag{
				Name:    "store-path",
				Usage:   "Persist finalized key shares to a badger store at this path",
				EnvVars: []string{"DKG_STORE_PATH"},
			},
			&cli.BoolFlag{
				Name:    "legacy-hash",
				Usage:   "Sign with the legacy Blake2b/ChaCha20 hash-to-G1 construction",
				EnvVars: []string{"DKG_LEGACY_HASH"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Verbose logging",
				EnvVars: []string{"DKG_DEBUG"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("dkg-demo failed: %v", err)
	}
}

func run(c *cli.Context) error {
	n := c.Int("nodes")
	t := c.Int("threshold")
	if t == 0 {
		t = (2*n + 2) / 3
	}

	zlog, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("debug")})
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build logger")
	}
	defer func() { _ = zlog.Sync() }()

	runID := uuid.New().String()
	zlog.Sugar().Infow("starting DKG run", "run_id", runID, "n", n, "t", t)

	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = uint32(i + 1)
	}

	participants := make([]*dkg.Participant, n)
	index := make(map[uint32]int, n)
	for i, id := range ids {
		p, err := dkg.NewParticipant(id, n, t, dkg.WithLogger(zlog))
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to create participant %d", id)
		}
		participants[i] = p
		index[id] = i
	}

	// Deal and cross-deliver through the wire encodings, exactly as a
	// real transport would: commitments broadcast, shares unicast.
	for _, p := range participants {
		deal, err := p.Deal(ids)
		if err != nil {
			return pkgerrors.Wrapf(err, "participant %d failed to deal", p.ID())
		}
		broadcast := types.NewDeal(p.ID(), deal.Commitments)

		for peer, share := range deal.Shares {
			recipient := participants[index[peer]]

			commitments, err := broadcast.DecodeCommitments()
			if err != nil {
				return pkgerrors.Wrapf(err, "delivery to participant %d", peer)
			}
			if err := recipient.ReceiveCommitments(broadcast.DealerID, commitments); err != nil {
				return pkgerrors.Wrapf(err, "delivery to participant %d", peer)
			}

			unicast := types.NewShareMessage(p.ID(), peer, share)
			decoded, err := unicast.DecodeShare()
			if err != nil {
				return pkgerrors.Wrapf(err, "delivery to participant %d", peer)
			}
			if err := recipient.ReceiveShare(unicast.DealerID, decoded); err != nil {
				return pkgerrors.Wrapf(err, "delivery to participant %d", peer)
			}
		}
	}

	for _, p := range participants {
		if _, err := p.Qualify(); err != nil {
			return pkgerrors.Wrapf(err, "participant %d failed to qualify", p.ID())
		}
		if err := p.Finalize(); err != nil {
			return pkgerrors.Wrapf(err, "participant %d failed to finalize", p.ID())
		}
	}

	mpk := participants[0].MasterPublicKey()
	zlog.Sugar().Infow("DKG complete", "run_id", runID,
		"master_public_key", fmt.Sprintf("%x", mpk.Marshal()))

	if path := c.String("store-path"); path != "" {
		store, err := badger.NewBadgerShareStore(path, zlog)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to open share store")
		}
		defer func() { _ = store.Close() }()

		for _, p := range participants {
			share, err := p.KeyShare()
			if err != nil {
				return pkgerrors.Wrapf(err, "participant %d key share", p.ID())
			}
			if err := store.SaveKeyShare(share); err != nil {
				return pkgerrors.Wrapf(err, "failed to persist share %d", p.ID())
			}
		}
		zlog.Sugar().Infow("key shares persisted", "path", path, "count", n)
	}

	// Threshold-sign with the first t participants.
	msg := []byte(c.String("message"))
	scheme := crypto.NewScheme()
	if c.Bool("legacy-hash") {
		scheme = crypto.NewLegacyScheme()
	}

	signerIDs := ids[:t]
	partials := make([]*bls.G1Point, t)
	for i := 0; i < t; i++ {
		share, err := participants[i].KeyShare()
		if err != nil {
			return pkgerrors.Wrapf(err, "participant %d key share", ids[i])
		}
		sig, err := scheme.Sign(share.PrivateShare, msg)
		if err != nil {
			return pkgerrors.Wrapf(err, "participant %d partial sign", ids[i])
		}

		pk, err := share.PublicShare.ToBLS()
		if err != nil {
			return pkgerrors.Wrapf(err, "participant %d public share", ids[i])
		}
		ok, err := scheme.VerifyPartial(pk, msg, sig)
		if err != nil {
			return pkgerrors.Wrapf(err, "participant %d partial verify", ids[i])
		}
		if !ok {
			return fmt.Errorf("partial signature of participant %d does not verify", ids[i])
		}
		partials[i] = sig
	}

	combined, err := crypto.CombineAndVerify(scheme, t, signerIDs, partials, msg, mpk)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to combine partial signatures")
	}

	zlog.Sugar().Infow("threshold signature verified", "run_id", runID,
		"message", string(msg), "signers", signerIDs,
		"signature", fmt.Sprintf("%x", combined.Marshal()))

	fmt.Printf("%d-of-%d threshold signature over %q verified against the master public key\n", t, n, msg)
	return nil
}
