package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyCheckpoint = "trainer_checkpoint"

// Checkpoint records the self-play learner's progress across epochs, so a
// restarted trainer can report continuity instead of starting its epoch
// counter back at zero.
type Checkpoint struct {
	Epoch          int       `json:"epoch"`
	TotalPositions int64     `json:"total_positions"`
	LastSnapshot   string    `json:"last_snapshot"`
	WeightMin      int16     `json:"weight_min"`
	WeightMax      int16     `json:"weight_max"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store wraps BadgerDB for trainer checkpoint persistence.
type Store struct {
	db *badger.DB
}

// NewStore opens (creating if absent) the checkpoint database.
func NewStore() (*Store, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveCheckpoint persists the current checkpoint.
func (s *Store) SaveCheckpoint(cp *Checkpoint) error {
	cp.UpdatedAt = time.Now()
	data, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyCheckpoint), data)
	})
}

// LoadCheckpoint loads the checkpoint, returning a zero-value one if none
// has been saved yet.
func (s *Store) LoadCheckpoint() (*Checkpoint, error) {
	cp := &Checkpoint{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyCheckpoint))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, cp)
		})
	})
	return cp, err
}
