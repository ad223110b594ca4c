package badger

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"sort"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/KaoImin/threshold-crypto/pkg/persistence"
	"github.com/KaoImin/threshold-crypto/pkg/types"
)

// Key prefixes for namespacing
const (
	keyPrefixShare       = "keyshare:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// BadgerShareStore is a durable IShareStore backed by Badger, with
// fsync on every write and periodic value-log garbage collection.
type BadgerShareStore struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

var _ persistence.IShareStore = (*BadgerShareStore)(nil)

// NewBadgerShareStore opens (or creates) the store at dataPath.
func NewBadgerShareStore(dataPath string, logger *zap.Logger) (*BadgerShareStore, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve absolute path")
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger database at %s", absPath)
	}

	bs := &BadgerShareStore{
		db:     db,
		logger: logger,
	}

	if err := bs.initSchema(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	ctx, cancel := context.WithCancel(context.Background())
	bs.gcCancel = cancel
	bs.gcWg.Add(1)
	go bs.runGC(ctx)

	logger.Sugar().Infow("Badger share store initialized", "path", absPath)

	return bs, nil
}

// initSchema sets the schema version on first open and rejects stores
// written by an incompatible version.
func (b *BadgerShareStore) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return errors.Wrap(err, "failed to read schema version")
		}

		var existing string
		if err := item.Value(func(val []byte) error {
			existing = string(val)
			return nil
		}); err != nil {
			return errors.Wrap(err, "failed to read schema version value")
		}

		if existing != currentSchemaVersion {
			return errors.Errorf("unsupported schema version: %s (expected: %s)", existing, currentSchemaVersion)
		}
		return nil
	})
}

// runGC runs periodic value log garbage collection.
func (b *BadgerShareStore) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(0.5)
			if err != nil && err != badgerdb.ErrNoRewrite {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func shareKey(participantID uint32) []byte {
	key := make([]byte, len(keyPrefixShare)+4)
	copy(key, keyPrefixShare)
	binary.BigEndian.PutUint32(key[len(keyPrefixShare):], participantID)
	return key
}

// SaveKeyShare persists a key share.
func (b *BadgerShareStore) SaveKeyShare(share *types.KeyShare) error {
	if share == nil {
		return errors.New("cannot save nil KeyShare")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return errors.New("share store is closed")
	}

	data, err := persistence.MarshalKeyShare(share)
	if err != nil {
		return errors.Wrap(err, "failed to marshal KeyShare")
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(shareKey(share.ParticipantID), data)
	})
}

// LoadKeyShare retrieves a key share, nil if absent.
func (b *BadgerShareStore) LoadKeyShare(participantID uint32) (*types.KeyShare, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, errors.New("share store is closed")
	}

	var share *types.KeyShare
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(shareKey(participantID))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			share, err = persistence.UnmarshalKeyShare(val)
			return err
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load key share %d", participantID)
	}
	return share, nil
}

// ListKeyShares returns all shares in ascending participant id order.
func (b *BadgerShareStore) ListKeyShares() ([]*types.KeyShare, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, errors.New("share store is closed")
	}

	shares := make([]*types.KeyShare, 0)
	err := b.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefixShare)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				share, err := persistence.UnmarshalKeyShare(val)
				if err != nil {
					return err
				}
				shares = append(shares, share)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list key shares")
	}

	sort.Slice(shares, func(i, j int) bool {
		return shares[i].ParticipantID < shares[j].ParticipantID
	})
	return shares, nil
}

// DeleteKeyShare removes a share. Idempotent.
func (b *BadgerShareStore) DeleteKeyShare(participantID uint32) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return errors.New("share store is closed")
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(shareKey(participantID))
	})
}

// Close stops GC and closes the database. Idempotent.
func (b *BadgerShareStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.gcCancel()
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return errors.Wrap(err, "failed to close badger database")
	}
	return nil
}

// HealthCheck verifies the database answers reads.
func (b *BadgerShareStore) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return errors.New("share store is closed")
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		return err
	})
}
