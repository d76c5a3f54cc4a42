package state

import (
	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/chain/genesis"
	"github.com/ardanlabs/whitelist/foundation/realm/whitelist"
)

// QueryLastest represents to query the latest block in the chain.
const QueryLastest = ^uint64(0) >> 1

// RetrieveHost returns a copy of the host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.BlockTx {
	return s.mempool.PickBest(-1)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// RetrieveAccounts returns a copy of the database accounts.
func (s *State) RetrieveAccounts() map[database.AccountID]database.Account {
	return s.db.CopyAccounts()
}

// QueryAccount returns a copy of the specified account.
func (s *State) QueryAccount(accountID database.AccountID) (database.Account, error) {
	return s.db.Query(accountID)
}

// RetrieveRealmAccountID returns the account the whitelist realm is
// deployed under.
func (s *State) RetrieveRealmAccountID() database.AccountID {
	return s.db.RealmAccountID()
}

// RetrieveWhitelists returns a copy of every whitelist in the registry.
func (s *State) RetrieveWhitelists() []database.WhitelistInfo {
	return s.db.CopyWhitelists()
}

// QueryWhitelist returns a copy of the whitelist stored under the
// specified id.
func (s *State) QueryWhitelist(id uint64) (whitelist.Record, error) {
	return s.db.Whitelist(id)
}

// RenderRealm produces the markdown report of the whitelist registry at
// the latest committed height.
func (s *State) RenderRealm(path string) string {
	return s.db.RenderRealm(path)
}

// QueryBlocksByNumber returns the set of blocks for the specified range
// of block numbers.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	if from == QueryLastest {
		from = s.db.LatestBlock().Header.Number
		to = from
	}

	if to == QueryLastest {
		to = s.db.LatestBlock().Header.Number
	}

	if from > to {
		return nil
	}

	var blocks []database.Block
	for num := from; num <= to; num++ {
		block, err := s.db.GetBlock(num)
		if err != nil {
			break
		}
		blocks = append(blocks, block)
	}

	return blocks
}
