package store

import (
	"fmt"
	"time"

	"fjacquet/ledger-audit/internal/logging"

	"github.com/boltdb/bolt"
)

// overridesBucket holds signature → account mappings.
var overridesBucket = []byte("overrides")

// OverrideStore persists learned description-to-account overrides in a
// bolt database. The engine reads a snapshot once per run and only ever
// appends afterwards.
type OverrideStore struct {
	db     *bolt.DB
	logger logging.Logger
}

// OpenOverrideStore opens (creating if needed) the override database.
func OpenOverrideStore(path string, logger logging.Logger) (*OverrideStore, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open override database %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(overridesBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create overrides bucket: %w", err)
	}
	return &OverrideStore{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *OverrideStore) Close() error {
	return s.db.Close()
}

// Snapshot returns the full signature → account mapping as it stands at
// the start of a run. The returned map is owned by the caller and never
// mutated by the store.
func (s *OverrideStore) Snapshot() (map[string]string, error) {
	snapshot := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(overridesBucket)
		return b.ForEach(func(k, v []byte) error {
			snapshot[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides: %w", err)
	}
	s.logger.WithField(logging.FieldCount, len(snapshot)).Debug("Loaded override snapshot")
	return snapshot, nil
}

// Append records one signature → account override. Existing entries for
// the signature are replaced: the latest human correction wins.
func (s *OverrideStore) Append(signature, account string) error {
	if signature == "" {
		return fmt.Errorf("override signature is empty")
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(overridesBucket)
		return b.Put([]byte(signature), []byte(account))
	})
	if err != nil {
		return fmt.Errorf("failed to append override: %w", err)
	}
	s.logger.WithFields(
		logging.Field{Key: logging.FieldSignature, Value: signature},
		logging.Field{Key: logging.FieldAccount, Value: account},
	).Debug("Recorded override")
	return nil
}
