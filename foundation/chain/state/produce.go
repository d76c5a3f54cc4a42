package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are no transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// ProduceBlock attempts to create a new block with a proper hash that can
// become the next block in the chain.
func (s *State) ProduceBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: ProduceBlock: check mempool count")

	// Are there enough transactions in the pool.
	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: ProduceBlock: perform POW")

	// Attempt to create a new block by solving the POW puzzle. This can
	// be cancelled.
	trans := s.mempool.PickBest(int(s.genesis.TransPerBlock))
	block, err := database.POW(ctx, s.beneficiaryID, s.genesis.Difficulty, s.db.LatestBlock(), trans, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: ProduceBlock: update local state")

	if err := s.updateLocalState(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// =============================================================================

// updateLocalState takes the block and updates the current state of the
// chain, including adding the block to storage.
func (s *State) updateLocalState(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: updateLocalState: write block to storage")

	// Write the new block to the chain in storage.
	if err := s.db.Write(block); err != nil {
		return err
	}
	s.db.UpdateLatestBlock(block)

	s.evHandler("state: updateLocalState: update accounts and realm, remove from mempool")

	// Process the transactions, updating accounts and the realm.
	for _, tx := range block.Trans {
		s.evHandler("state: updateLocalState: tx[%s] update and remove", tx)

		// Apply the account and realm changes based on this transaction.
		if err := s.db.ApplyTransaction(block, tx); err != nil {
			s.evHandler("state: updateLocalState: WARNING : %s", err)
		}

		// Remove this transaction from the mempool.
		s.mempool.Delete(tx)
	}

	s.evHandler("state: updateLocalState: apply the block reward")

	// Apply the block reward for this block.
	s.db.ApplyProduceReward(block)

	return nil
}
