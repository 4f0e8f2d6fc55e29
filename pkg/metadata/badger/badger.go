// Package badger implements a persistent metadata store on BadgerDB.
//
// This backend targets single-node deployments that want durable metadata
// without running a MongoDB server. Records are stored as JSON values
// under sequence-ordered keys, so iteration order equals insertion order
// and pagination behaves like the other backends.
//
// Key schema:
//
//	file/<seq>   -> JSON FileRecord (seq is a zero-padded insertion counter)
//	fileid/<id>  -> file/<seq> (point-lookup index)
//	user/<id>    -> JSON User
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/filedepot/filedepot/pkg/metadata"
)

const (
	filePrefix      = "file/"
	fileIndexPrefix = "fileid/"
	userPrefix      = "user/"
	seqKey          = "meta/fileseq"

	// seqBandwidth is how many sequence numbers badger leases at a time.
	// Gaps after a crash are fine: only relative order matters.
	seqBandwidth = 128
)

// BadgerStoreConfig configures the BadgerDB metadata store.
type BadgerStoreConfig struct {
	// DBPath is the directory holding the BadgerDB files. Required.
	DBPath string

	// InMemory opens the database without touching disk. Tests only.
	InMemory bool
}

// BadgerStore implements metadata.Store on an embedded BadgerDB.
//
// Thread safety:
// Badger transactions provide isolation; a store-level mutex additionally
// serializes writes so the insert-then-index pair stays atomic relative to
// other writers in this process.
type BadgerStore struct {
	mu  sync.Mutex
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerStore opens (creating if necessary) the database at cfg.DBPath.
func NewBadgerStore(ctx context.Context, cfg BadgerStoreConfig) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.DBPath == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger metadata store: db_path is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.DBPath)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	seq, err := db.GetSequence([]byte(seqKey), seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create file sequence: %w", err)
	}

	return &BadgerStore{db: db, seq: seq}, nil
}

func fileKey(seq uint64) []byte {
	// Zero-padded so lexicographic key order equals numeric order
	return []byte(fmt.Sprintf("%s%020d", filePrefix, seq))
}

func fileIndexKey(id string) []byte {
	return []byte(fileIndexPrefix + id)
}

func userKey(id string) []byte {
	return []byte(userPrefix + id)
}

// AddUser seeds a user. Registration belongs to an external service; this
// exists for tests and bootstrap tooling.
func (s *BadgerStore) AddUser(user metadata.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	value, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), value)
	})
}

// InsertFile persists a new record and returns its assigned id.
func (s *BadgerStore) InsertFile(ctx context.Context, record *metadata.FileRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := record.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	seq, err := s.seq.Next()
	if err != nil {
		return "", fmt.Errorf("failed to allocate file sequence: %w", err)
	}

	value, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode file record: %w", err)
	}
	// LocalPath carries json:"-" in the domain struct, so it is persisted
	// separately alongside the record.
	envelope, err := json.Marshal(storedEnvelope{Record: value, LocalPath: string(stored.LocalPath)})
	if err != nil {
		return "", fmt.Errorf("failed to encode file envelope: %w", err)
	}

	key := fileKey(seq)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, envelope); err != nil {
			return err
		}
		return txn.Set(fileIndexKey(stored.ID), key)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write file record: %w", err)
	}

	record.ID = stored.ID
	return stored.ID, nil
}

// storedEnvelope wraps the JSON form of a record together with fields the
// domain struct deliberately refuses to serialize.
type storedEnvelope struct {
	Record    json.RawMessage `json:"record"`
	LocalPath string          `json:"localPath,omitempty"`
}

func decodeEnvelope(value []byte) (*metadata.FileRecord, error) {
	var env storedEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("failed to decode file envelope: %w", err)
	}
	var record metadata.FileRecord
	if err := json.Unmarshal(env.Record, &record); err != nil {
		return nil, fmt.Errorf("failed to decode file record: %w", err)
	}
	record.LocalPath = metadata.BlobID(env.LocalPath)
	return &record, nil
}

func (s *BadgerStore) getByIndex(txn *badger.Txn, id string) (*metadata.FileRecord, []byte, error) {
	item, err := txn.Get(fileIndexKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil, metadata.NotFound("file " + id + " not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file index: %w", err)
	}

	key, err := item.ValueCopy(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to copy index value: %w", err)
	}

	fileItem, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil, metadata.NotFound("file " + id + " not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file record: %w", err)
	}

	value, err := fileItem.ValueCopy(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to copy file record: %w", err)
	}

	record, err := decodeEnvelope(value)
	if err != nil {
		return nil, nil, err
	}
	return record, key, nil
}

// FileByID returns the record with the given id regardless of owner.
func (s *BadgerStore) FileByID(ctx context.Context, id string) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *metadata.FileRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		record, _, err = s.getByIndex(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FileByIDForUser returns the record only if owned by userID.
func (s *BadgerStore) FileByIDForUser(ctx context.Context, id, userID string) (*metadata.FileRecord, error) {
	record, err := s.FileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, metadata.NotFound("file " + id + " not found")
	}
	return record, nil
}

// ListFiles scans records in key (= insertion) order, filtering by owner
// and parent, applying skip/limit on the filtered sequence.
func (s *BadgerStore) ListFiles(ctx context.Context, userID, parentID string, skip, limit int64) ([]*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]*metadata.FileRecord, 0)
	var matched int64

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(filePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && int64(len(records)) >= limit {
				break
			}

			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to copy file record: %w", err)
			}
			record, err := decodeEnvelope(value)
			if err != nil {
				return err
			}
			if record.UserID != userID || record.ParentID != parentID {
				continue
			}

			if matched >= skip {
				records = append(records, record)
			}
			matched++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SetFilePublic updates only the IsPublic flag.
func (s *BadgerStore) SetFilePublic(ctx context.Context, id string, isPublic bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		record, key, err := s.getByIndex(txn, id)
		if err != nil {
			return err
		}
		record.IsPublic = isPublic

		recordJSON, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode file record: %w", err)
		}
		envelope, err := json.Marshal(storedEnvelope{Record: recordJSON, LocalPath: string(record.LocalPath)})
		if err != nil {
			return fmt.Errorf("failed to encode file envelope: %w", err)
		}
		return txn.Set(key, envelope)
	})
}

// CountFiles returns the total number of file records.
func (s *BadgerStore) CountFiles(ctx context.Context) (int64, error) {
	return s.countPrefix(ctx, fileIndexPrefix)
}

// CountUsers returns the total number of users.
func (s *BadgerStore) CountUsers(ctx context.Context) (int64, error) {
	return s.countPrefix(ctx, userPrefix)
}

func (s *BadgerStore) countPrefix(ctx context.Context, prefix string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UserByID returns the user with the given id.
func (s *BadgerStore) UserByID(ctx context.Context, id string) (*metadata.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user metadata.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err == badger.ErrKeyNotFound {
			return metadata.NotFound("user " + id + " not found")
		}
		if err != nil {
			return fmt.Errorf("failed to read user: %w", err)
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Ping reports whether the database is open.
func (s *BadgerStore) Ping(ctx context.Context) bool {
	return ctx.Err() == nil && !s.db.IsClosed()
}

// Close releases the sequence lease and closes the database.
func (s *BadgerStore) Close(ctx context.Context) error {
	if err := s.seq.Release(); err != nil {
		return fmt.Errorf("failed to release file sequence: %w", err)
	}
	return s.db.Close()
}
