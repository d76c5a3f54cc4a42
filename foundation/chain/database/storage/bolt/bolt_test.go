package bolt_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/chain/database/storage/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempBolt(t *testing.T) *bolt.Bolt {
	t.Helper()
	store, err := bolt.New(filepath.Join(t.TempDir(), "blocks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testBlockData(num uint64) database.BlockData {
	return database.BlockData{
		Hash: "0x0000000000000000000000000000000000000000000000000000000000000000",
		Header: database.BlockHeader{
			Number:    num,
			TimeStamp: 1700000000000 + num,
		},
	}
}

func TestBolt_WriteAndGet(t *testing.T) {
	store := tempBolt(t)

	blockData := testBlockData(1)
	require.NoError(t, store.Write(blockData))

	got, err := store.GetBlock(1)
	require.NoError(t, err)
	assert.Equal(t, blockData.Header.Number, got.Header.Number)
	assert.Equal(t, blockData.Header.TimeStamp, got.Header.TimeStamp)

	_, err = store.GetBlock(2)
	assert.ErrorIs(t, err, bolt.ErrBlockNotFound)
}

func TestBolt_ForEach(t *testing.T) {
	store := tempBolt(t)

	for num := uint64(1); num <= 3; num++ {
		require.NoError(t, store.Write(testBlockData(num)))
	}

	var numbers []uint64
	iter := store.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		require.NoError(t, err)
		numbers = append(numbers, blockData.Header.Number)
	}

	assert.Equal(t, []uint64{1, 2, 3}, numbers)
}

func TestBolt_Reset(t *testing.T) {
	store := tempBolt(t)

	require.NoError(t, store.Write(testBlockData(1)))
	require.NoError(t, store.Reset())

	_, err := store.GetBlock(1)
	assert.ErrorIs(t, err, bolt.ErrBlockNotFound)
}
