// Package mempool maintains the mempool for the chain.
package mempool

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
)

// Mempool represents a cache of transactions organized by account:nonce.
type Mempool struct {
	mu   sync.RWMutex
	pool map[string]database.BlockTx
}

// New constructs a new mempool for managing pending transactions.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.BlockTx),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx database.BlockTx) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key, err := mapKey(tx)
	if err != nil {
		return 0, err
	}

	mp.pool[key] = tx

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(tx database.BlockTx) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key, err := mapKey(tx)
	if err != nil {
		return err
	}

	delete(mp.pool, key)

	return nil
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.BlockTx)
}

// PickBest returns at most howMany transactions for the next block. Use
// -1 for all. Transactions from the same account stay in nonce order so
// the nonce validation in the database can't reject a later transaction
// because an earlier one wasn't included. Accounts offering the highest
// tip go first.
func (mp *Mempool) PickBest(howMany int) []database.BlockTx {

	// Group the transactions by account.
	byAccount := make(map[string][]database.BlockTx)
	mp.mu.RLock()
	{
		if howMany == -1 {
			howMany = len(mp.pool)
		}

		for key, tx := range mp.pool {
			account := accountFromMapKey(key)
			byAccount[account] = append(byAccount[account], tx)
		}
	}
	mp.mu.RUnlock()

	// Sort each account's transactions by nonce and capture the best tip
	// an account is offering.
	type group struct {
		account string
		bestTip uint64
		txs     []database.BlockTx
	}

	groups := make([]group, 0, len(byAccount))
	for account, txs := range byAccount {
		sort.Slice(txs, func(i, j int) bool {
			return txs[i].Nonce < txs[j].Nonce
		})

		var bestTip uint64
		for _, tx := range txs {
			if tx.Tip > bestTip {
				bestTip = tx.Tip
			}
		}

		groups = append(groups, group{account: account, bestTip: bestTip, txs: txs})
	}

	// Order the accounts by best tip, account id as the tie breaker to
	// keep the selection deterministic.
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].bestTip != groups[j].bestTip {
			return groups[i].bestTip > groups[j].bestTip
		}
		return groups[i].account < groups[j].account
	})

	var picked []database.BlockTx
	for _, grp := range groups {
		for _, tx := range grp.txs {
			if len(picked) == howMany {
				return picked
			}
			picked = append(picked, tx)
		}
	}

	return picked
}

// =============================================================================

// mapKey is used to generate the map key.
func mapKey(tx database.BlockTx) (string, error) {
	account, err := tx.FromAccount()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%d", account, tx.Nonce), nil
}

// accountFromMapKey extracts the account part from a map key.
func accountFromMapKey(key string) string {
	return strings.Split(key, ":")[0]
}
