// Package store persists emulator state in a bbolt database.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// RuleError marks a request that is well-formed but violates an accounting
// rule, e.g. booking a draft voucher or modifying an enshrined transaction.
// Handlers translate it to HTTP 400.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string {
	return e.Msg
}

// ruleErrorf builds a RuleError.
func ruleErrorf(format string, args ...any) error {
	return &RuleError{Msg: fmt.Sprintf(format, args...)}
}

// Bucket names.
const (
	BucketVouchers      = "vouchers"
	BucketTransactions  = "transactions"
	BucketInvoices      = "invoices"
	BucketContacts      = "contacts"
	BucketCheckAccounts = "check_accounts"
)

// Store represents the bbolt database wrapper.
type Store struct {
	db *bolt.DB
}

// New creates a new Store instance, initializes buckets and seeds default
// check accounts and contacts when the database is empty.
func New(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize buckets.
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := []string{BucketVouchers, BucketTransactions, BucketInvoices, BucketContacts, BucketCheckAccounts}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.seedDefaults(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to seed default data: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NextID generates the next ID for a bucket.
func (s *Store) NextID(bucketName string) (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq)
		return nil
	})
	return id, err
}

// Put stores a value in the specified bucket with the given key.
func (s *Store) Put(bucketName string, key int64, value interface{}) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}

		return b.Put(itob(key), data)
	})
}

// Get retrieves a value from the specified bucket with the given key.
func (s *Store) Get(bucketName string, key int64, value interface{}) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		data := b.Get(itob(key))
		if data == nil {
			return ErrNotFound
		}

		return json.Unmarshal(data, value)
	})
}

// Delete removes a value from the specified bucket with the given key.
func (s *Store) Delete(bucketName string, key int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		return b.Delete(itob(key))
	})
}

// List retrieves all values from the specified bucket.
func (s *Store) List(bucketName string, filter func(data []byte) bool) ([][]byte, error) {
	var results [][]byte

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		return b.ForEach(func(k, v []byte) error {
			if filter == nil || filter(v) {
				// Copy the value since it's only valid during the transaction.
				copied := make([]byte, len(v))
				copy(copied, v)
				results = append(results, copied)
			}
			return nil
		})
	})

	return results, err
}

// Count returns the number of records in the specified bucket.
func (s *Store) Count(bucketName string) (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

// paginate applies limit/offset semantics to a result slice. A limit of zero
// means no limit.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// itob converts an int64 to a byte slice for use as a bbolt key.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
