// Package database handles all the lower level support for maintaining the
// chain on disk and maintaining the in-memory account and realm state.
package database

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/whitelist/foundation/chain/genesis"
	"github.com/ardanlabs/whitelist/foundation/realm/whitelist"
)

// Serializer interface represents the behavior required to be implemented
// by any package providing support for storing and reading the chain.
type Serializer interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented
// by any package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator provides support for walking through the blocks in
// the database.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData), nil
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// WhitelistInfo pairs a whitelist record with the registry key it is
// stored under.
type WhitelistInfo struct {
	ID     uint64
	Record whitelist.Record
}

// Database manages data related to accounts who have transacted on the
// chain and the state of the whitelist realm. All of it is rebuilt from
// the blocks in storage at startup.
type Database struct {
	mu sync.RWMutex

	genesis        genesis.Genesis
	latestBlock    Block
	accounts       map[AccountID]Account
	registry       *whitelist.Registry
	realmAccountID AccountID

	storage Serializer
}

// New constructs a new database, applies the genesis balances and replays
// any blocks found in storage to rebuild account and realm state.
func New(genesis genesis.Genesis, storage Serializer, evHandler func(v string, args ...any)) (*Database, error) {
	realmAccountID, err := ToAccountID(genesis.RealmAccount)
	if err != nil {
		return nil, fmt.Errorf("invalid realm account in genesis: %w", err)
	}

	db := Database{
		genesis:        genesis,
		accounts:       make(map[AccountID]Account),
		registry:       whitelist.NewRegistry(),
		realmAccountID: realmAccountID,
		storage:        storage,
	}

	// Update the database with account balance information from genesis.
	for accountStr, balance := range genesis.Balances {
		accountID, err := ToAccountID(accountStr)
		if err != nil {
			return nil, err
		}
		db.accounts[accountID] = newAccount(accountID, balance)
	}

	// Read the chain from storage and replay every transaction to
	// rebuild the accounts and the whitelist registry.
	iter := db.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		block := ToBlock(blockData)

		if err := block.ValidateBlock(db.latestBlock, evHandler); err != nil {
			return nil, err
		}

		for _, tx := range block.Trans {
			if err := db.ApplyTransaction(block, tx); err != nil {
				evHandler("database: New: replay: WARNING: tx[%s]: %s", tx, err)
			}
		}
		db.ApplyProduceReward(block)

		db.latestBlock = block
	}

	return &db, nil
}

// Close closes the open block storage.
func (db *Database) Close() {
	db.storage.Close()
}

// Reset re-initializes the database back to the genesis state.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return err
	}

	db.latestBlock = Block{}
	db.accounts = make(map[AccountID]Account)
	db.registry = whitelist.NewRegistry()

	for accountStr, balance := range db.genesis.Balances {
		accountID, err := ToAccountID(accountStr)
		if err != nil {
			return err
		}
		db.accounts[accountID] = newAccount(accountID, balance)
	}

	return nil
}

// RealmAccountID returns the account the whitelist realm is deployed under.
func (db *Database) RealmAccountID() AccountID {
	return db.realmAccountID
}

// Query returns a copy of the account from the database.
func (db *Database) Query(accountID AccountID) (Account, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return Account{}, fmt.Errorf("account %s does not exist", accountID)
	}

	return account, nil
}

// CopyAccounts makes a copy of the current accounts in the database.
func (db *Database) CopyAccounts() map[AccountID]Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make(map[AccountID]Account)
	for accountID, account := range db.accounts {
		accounts[accountID] = account
	}
	return accounts
}

// ValidateNonce validates the nonce for the specified transaction is
// larger than the last nonce used by the account who signed it.
func (db *Database) ValidateNonce(signedTx SignedTx) error {
	fromID, err := signedTx.FromAccount()
	if err != nil {
		return err
	}

	var account Account
	db.mu.RLock()
	{
		account = db.accounts[fromID]
	}
	db.mu.RUnlock()

	if signedTx.Nonce <= account.Nonce {
		return fmt.Errorf("invalid nonce, got %d, exp > %d", signedTx.Nonce, account.Nonce)
	}

	return nil
}

// ApplyProduceReward gives the beneficiary account the block reward.
func (db *Database) ApplyProduceReward(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	account := db.accounts[block.Header.BeneficiaryID]
	account.AccountID = block.Header.BeneficiaryID
	account.Balance += db.genesis.ProduceReward

	db.accounts[block.Header.BeneficiaryID] = account
}

// ApplyTransaction performs the business logic for applying a transaction
// to the database, including the execution of any realm call it carries.
func (db *Database) ApplyTransaction(block Block, tx BlockTx) error {

	// Capture the from address from the signature of the transaction.
	fromID, err := tx.FromAccount()
	if err != nil {
		return fmt.Errorf("invalid signature, %s", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	{
		// Capture these accounts from the database.
		from := db.accounts[fromID]
		from.AccountID = fromID

		to := db.accounts[tx.ToID]
		to.AccountID = tx.ToID

		bnfc := db.accounts[block.Header.BeneficiaryID]
		bnfc.AccountID = block.Header.BeneficiaryID

		// The account needs to pay the gas fee regardless. Take the
		// remaining balance if the account doesn't hold enough for the
		// full amount of gas. This is the only way to stop bad actors.
		gasFee := tx.GasPrice * tx.GasUnits
		if gasFee > from.Balance {
			gasFee = from.Balance
		}
		from.Balance -= gasFee
		bnfc.Balance += gasFee

		// Make sure these changes get applied.
		db.accounts[fromID] = from
		db.accounts[block.Header.BeneficiaryID] = bnfc

		// Perform basic accounting checks.
		{
			if tx.ChainID != db.genesis.ChainID {
				return fmt.Errorf("transaction invalid, wrong chain id, got %d, exp %d", tx.ChainID, db.genesis.ChainID)
			}

			if fromID == tx.ToID {
				return fmt.Errorf("transaction invalid, sending money to yourself, from %s, to %s", fromID, tx.ToID)
			}

			if tx.Nonce <= from.Nonce {
				return fmt.Errorf("transaction invalid, nonce too small, current %d, provided %d", from.Nonce, tx.Nonce)
			}

			if from.Balance == 0 || from.Balance < (tx.Value+tx.Tip) {
				return fmt.Errorf("transaction invalid, insufficient funds, bal %d, needed %d", from.Balance, (tx.Value + tx.Tip))
			}
		}

		// Update the balances between the two parties.
		from.Balance -= tx.Value
		to.Balance += tx.Value

		// Give the beneficiary the tip.
		from.Balance -= tx.Tip
		bnfc.Balance += tx.Tip

		// Update the nonce for the next transaction check.
		from.Nonce = tx.Nonce

		// Update the final changes to these accounts.
		db.accounts[fromID] = from
		db.accounts[tx.ToID] = to
		db.accounts[block.Header.BeneficiaryID] = bnfc

		// A transaction sent to the realm account carries a realm call
		// in its data field. Execute it at this block's height with the
		// signer as the caller. A failed call consumes its gas but the
		// registry is left unchanged.
		if tx.ToID == db.realmAccountID && len(tx.Data) > 0 {
			if _, err := db.executeRealmCall(fromID, tx.Data, block.Header.Number); err != nil {
				return fmt.Errorf("realm call failed: %w", err)
			}
		}
	}

	return nil
}

// executeRealmCall dispatches a decoded realm call against the whitelist
// registry. The caller must hold the database lock.
func (db *Database) executeRealmCall(fromID AccountID, data []byte, height uint64) (string, error) {
	call, err := ToRealmCall(data)
	if err != nil {
		return "", err
	}

	switch call.Method {
	case MethodCreate:
		_, msg, err := db.registry.Create(fromID.Address(), call.Name, call.Deadline, call.Capacity, height)
		return msg, err

	case MethodSignUp:
		return db.registry.SignUp(fromID.Address(), call.WhitelistID, height)
	}

	return "", fmt.Errorf("unknown realm method %q", call.Method)
}

// RenderRealm produces the markdown report of the whitelist registry at
// the latest committed height.
func (db *Database) RenderRealm(path string) string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.registry.Render(path, db.latestBlock.Header.Number)
}

// Whitelist returns a copy of the whitelist stored under the specified id.
func (db *Database) Whitelist(id uint64) (whitelist.Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.registry.Get(id)
}

// CopyWhitelists returns a copy of every whitelist in the registry in
// ascending key order.
func (db *Database) CopyWhitelists() []WhitelistInfo {
	db.mu.RLock()
	defer db.mu.RUnlock()

	infos := make([]WhitelistInfo, 0, db.registry.Count())
	for id := uint64(0); id < uint64(db.registry.Count()); id++ {
		rec, err := db.registry.Get(id)
		if err != nil {
			continue
		}
		infos = append(infos, WhitelistInfo{ID: id, Record: rec})
	}

	return infos
}

// UpdateLatestBlock provides safe access to update the latest block.
func (db *Database) UpdateLatestBlock(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.latestBlock = block
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Write adds a new block to the chain.
func (db *Database) Write(block Block) error {
	return db.storage.Write(NewBlockData(block))
}

// ForEach returns an iterator to walk through all the blocks starting
// with block number 1.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.storage.ForEach()}
}

// GetBlock searches the chain in storage to locate and return the
// contents of the specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	blockData, err := db.storage.GetBlock(num)
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData), nil
}
