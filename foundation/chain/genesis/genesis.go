// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time         `json:"date"`
	ChainID       uint16            `json:"chain_id"`       // Unique id for this running chain instance.
	TransPerBlock uint16            `json:"trans_per_block"` // Maximum number of transactions per block.
	Difficulty    uint16            `json:"difficulty"`      // Number of leading 0's needed to solve the work problem.
	ProduceReward uint64            `json:"produce_reward"`  // Reward for producing a block.
	GasPrice      uint64            `json:"gas_price"`       // Fee paid for each transaction included in a block.
	RealmAccount  string            `json:"realm_account"`   // Account the whitelist realm is deployed under.
	Balances      map[string]uint64 `json:"balances"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
