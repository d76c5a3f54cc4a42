// Package state is the core API for the chain and implements all the
// business rules and processing.
package state

import (
	"sync"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/chain/genesis"
	"github.com/ardanlabs/whitelist/foundation/chain/mempool"
)

// EventHandler defines a function that is called when events occur in
// the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for background block production.
type Worker interface {
	Shutdown()
	SignalStartProduce()
}

// =============================================================================

// Config represents the configuration required to start the chain node.
type Config struct {
	BeneficiaryID database.AccountID
	Host          string
	Genesis       genesis.Genesis
	Storage       database.Serializer
	EvHandler     EventHandler
}

// State manages the chain database, the mempool and the whitelist realm.
type State struct {
	mu sync.Mutex

	beneficiaryID database.AccountID
	host          string
	evHandler     EventHandler

	genesis genesis.Genesis
	mempool *mempool.Mempool
	db      *database.Database

	Worker Worker
}

// New constructs a new state for chain data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the chain. This replays any existing blocks
	// and rebuilds the accounts and the whitelist registry.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		beneficiaryID: cfg.BeneficiaryID,
		host:          cfg.Host,
		evHandler:     ev,

		genesis: cfg.Genesis,
		mempool: mempool.New(),
		db:      db,
	}

	// The Worker is not set here. The call to worker.Run will assign
	// itself and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the database storage is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all block production activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
