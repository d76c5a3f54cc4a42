// Package bolt implements the ability to read and write blocks to a
// single bbolt database file.
package bolt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"go.etcd.io/bbolt"
)

var bucketBlocks = []byte("blocks")

// ErrBlockNotFound is returned when the requested block number is not
// in the database.
var ErrBlockNotFound = errors.New("block does not exist")

// Bolt represents the serialization implementation for reading and storing
// blocks in a bbolt database. This implements the database.Serializer
// interface.
type Bolt struct {
	db *bbolt.DB
}

// New opens or creates the bbolt database at dbPath. The parent directory
// is created if it does not exist.
func New(dbPath string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("bolt: create directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt: open db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlocks)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Write takes the specified block data and stores it under its big-endian
// encoded block number so a cursor walks the chain in order.
func (b *Bolt) Write(blockData database.BlockData) error {
	data, err := json.Marshal(blockData)
	if err != nil {
		return fmt.Errorf("bolt: encode block: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlocks).Put(numberKey(blockData.Header.Number), data)
	})
}

// GetBlock searches the chain in the database to locate and return the
// contents of the specified block by number.
func (b *Bolt) GetBlock(num uint64) (database.BlockData, error) {
	var blockData database.BlockData

	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketBlocks).Get(numberKey(num))
		if data == nil {
			return ErrBlockNotFound
		}

		return json.Unmarshal(data, &blockData)
	})
	if err != nil {
		return database.BlockData{}, err
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks starting
// with block number 1.
func (b *Bolt) ForEach() database.Iterator {
	return &boltIterator{bolt: b}
}

// Reset will clear out the chain in the database.
func (b *Bolt) Reset() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketBlocks); err != nil {
			return err
		}

		_, err := tx.CreateBucket(bucketBlocks)
		return err
	})
}

// numberKey encodes a block number as an 8-byte big-endian key for
// sorted storage.
func numberKey(num uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, num)
	return k
}

// =============================================================================

// boltIterator represents the iteration implementation for walking through
// and reading blocks in the database. This implements the
// database.Iterator interface.
type boltIterator struct {
	bolt    *Bolt  // Access to the bolt storage API.
	current uint64 // Current block number being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from the database.
func (bi *boltIterator) Next() (database.BlockData, error) {
	if bi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	bi.current++
	blockData, err := bi.bolt.GetBlock(bi.current)
	if errors.Is(err, ErrBlockNotFound) {
		bi.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (bi *boltIterator) Done() bool {
	return bi.eoc
}
