// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	v1 "github.com/ardanlabs/whitelist/business/web/v1"
	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/chain/state"
	"github.com/ardanlabs/whitelist/foundation/events"
	"github.com/ardanlabs/whitelist/foundation/nameservice"
	"github.com/ardanlabs/whitelist/foundation/realm/whitelist"
	"github.com/ardanlabs/whitelist/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds new user transactions to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Decode the JSON in the post call into a signed transaction.
	var signedTx database.SignedTx
	if err := web.Decode(r, &signedTx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "from:nonce", signedTx, "to", signedTx.ToID, "value", signedTx.Value, "tip", signedTx.Tip)
	if err := h.State.SubmitWalletTransaction(signedTx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transactions added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := []tx{}
	for _, tran := range mempool {
		account, _ := tran.FromAccount()

		trans = append(trans, tx{
			FromAccount: account,
			FromName:    h.NS.Lookup(account),
			To:          tran.ToID,
			ToName:      h.NS.Lookup(tran.ToID),
			ChainID:     tran.ChainID,
			Nonce:       tran.Nonce,
			Value:       tran.Value,
			Tip:         tran.Tip,
			Data:        tran.Data,
			TimeStamp:   tran.TimeStamp,
			GasPrice:    tran.GasPrice,
			GasUnits:    tran.GasUnits,
			Sig:         tran.SignatureString(),
		})
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Accounts returns the current account balances and nonces.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountStr := web.Param(r, "account")

	var accounts map[database.AccountID]database.Account
	switch accountStr {
	case "":
		accounts = h.State.RetrieveAccounts()

	default:
		accountID, err := database.ToAccountID(accountStr)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}

		account, err := h.State.QueryAccount(accountID)
		if err != nil {
			return v1.NewRequestError(err, http.StatusNotFound)
		}
		accounts = map[database.AccountID]database.Account{accountID: account}
	}

	acts := make([]info, 0, len(accounts))
	for accountID, account := range accounts {
		act := info{
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Balance: account.Balance,
			Nonce:   account.Nonce,
		}
		acts = append(acts, act)
	}

	ai := actInfo{
		LastestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted:  h.State.QueryMempoolLength(),
		Accounts:     acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Whitelists returns the whitelists maintained by the realm. When an id is
// specified, only that whitelist is returned.
func (h Handlers) Whitelists(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	height := h.State.RetrieveLatestBlock().Header.Number

	idStr := web.Param(r, "id")
	if idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}

		rec, err := h.State.QueryWhitelist(id)
		if err != nil {
			return v1.NewRequestError(err, http.StatusNotFound)
		}

		return web.Respond(ctx, w, toRecord(id, rec, height), http.StatusOK)
	}

	infos := h.State.RetrieveWhitelists()

	records := make([]record, len(infos))
	for i, inf := range infos {
		records[i] = toRecord(inf.ID, inf.Record, height)
	}

	return web.Respond(ctx, w, records, http.StatusOK)
}

// Render returns the markdown document for the realm registry.
func (h Handlers) Render(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	path := web.Param(r, "path")

	doc := h.State.RenderRealm(path)

	return web.RespondText(ctx, w, doc, http.StatusOK)
}

// toRecord converts a whitelist record into its web representation.
func toRecord(id uint64, rec whitelist.Record, height uint64) record {
	roster := rec.Roster()

	signers := make([]signer, len(roster))
	for i, address := range roster {
		signers[i] = signer{
			Ordinal: uint64(i),
			Address: address,
		}
	}

	return record{
		ID:       id,
		Name:     rec.Name(),
		Owner:    rec.Owner(),
		Deadline: rec.Deadline(),
		Capacity: rec.Capacity(),
		Open:     rec.Open(height),
		Signers:  signers,
	}
}
