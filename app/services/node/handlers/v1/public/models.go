package public

import (
	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/realm/whitelist"
)

type info struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance uint64             `json:"balance"`
	Nonce   uint64             `json:"nonce"`
}

type actInfo struct {
	LastestBlock string `json:"lastest_block"`
	Uncommitted  int    `json:"uncommitted"`
	Accounts     []info `json:"accounts"`
}

type tx struct {
	FromAccount database.AccountID `json:"from"`
	FromName    string             `json:"from_name"`
	To          database.AccountID `json:"to"`
	ToName      string             `json:"to_name"`
	ChainID     uint16             `json:"chain_id"`
	Nonce       uint64             `json:"nonce"`
	Value       uint64             `json:"value"`
	Tip         uint64             `json:"tip"`
	Data        []byte             `json:"data"`
	TimeStamp   uint64             `json:"timestamp"`
	GasPrice    uint64             `json:"gas_price"`
	GasUnits    uint64             `json:"gas_units"`
	Sig         string             `json:"sig"`
}

type signer struct {
	Ordinal uint64            `json:"ordinal"`
	Address whitelist.Address `json:"address"`
}

type record struct {
	ID       uint64            `json:"id"`
	Name     string            `json:"name"`
	Owner    whitelist.Address `json:"owner"`
	Deadline uint64            `json:"deadline"`
	Capacity int               `json:"capacity"`
	Open     bool              `json:"open"`
	Signers  []signer          `json:"signers"`
}
