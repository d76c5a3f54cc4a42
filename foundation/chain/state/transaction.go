package state

import (
	"github.com/ardanlabs/whitelist/foundation/chain/database"
)

// SubmitWalletTransaction accepts a transaction from a wallet for
// inclusion into the chain.
func (s *State) SubmitWalletTransaction(signedTx database.SignedTx) error {
	if err := s.validateTransaction(signedTx); err != nil {
		return err
	}

	tx := database.NewBlockTx(signedTx, s.genesis.GasPrice, 1)

	n, err := s.mempool.Upsert(tx)
	if err != nil {
		return err
	}
	s.evHandler("state: SubmitWalletTransaction: tx[%s]: mempool[%d]", tx, n)

	if s.Worker != nil {
		s.Worker.SignalStartProduce()
	}

	return nil
}

// =============================================================================

// validateTransaction takes the signed transaction and validates it has
// a proper signature and other aspects of the data.
func (s *State) validateTransaction(signedTx database.SignedTx) error {
	if err := signedTx.Validate(s.genesis.ChainID); err != nil {
		return err
	}

	if err := s.db.ValidateNonce(signedTx); err != nil {
		return err
	}

	return nil
}
