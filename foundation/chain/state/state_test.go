package state_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/chain/database/storage/memory"
	"github.com/ardanlabs/whitelist/foundation/chain/genesis"
	"github.com/ardanlabs/whitelist/foundation/chain/state"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	producerKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	callerKey   = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	realmHex    = "0x0000000000000000000000000000000000000001"
)

// newTestState builds a state over memory storage with a funded caller
// account and returns the caller account id.
func newTestState(t *testing.T, strg database.Serializer) (*state.State, database.AccountID) {
	t.Helper()

	producerPK, err := crypto.HexToECDSA(producerKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse the producer key: %v", failed, err)
	}
	callerPK, err := crypto.HexToECDSA(callerKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse the caller key: %v", failed, err)
	}

	callerID := database.PublicKeyToAccountID(callerPK.PublicKey)

	gen := genesis.Genesis{
		ChainID:       1,
		TransPerBlock: 10,
		Difficulty:    1,
		ProduceReward: 100,
		GasPrice:      5,
		RealmAccount:  realmHex,
		Balances: map[string]uint64{
			string(callerID): 1000,
		},
	}

	st, err := state.New(state.Config{
		BeneficiaryID: database.PublicKeyToAccountID(producerPK.PublicKey),
		Host:          "http://localhost:9080",
		Genesis:       gen,
		Storage:       strg,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st, callerID
}

// submitRealmCall signs and submits a realm call transaction for the
// caller key.
func submitRealmCall(t *testing.T, st *state.State, nonce uint64, data []byte) {
	t.Helper()

	callerPK, err := crypto.HexToECDSA(callerKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse the caller key: %v", failed, err)
	}

	tx, err := database.NewTx(1, nonce, database.AccountID(realmHex), 0, 0, data)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a transaction: %v", failed, err)
	}

	signedTx, err := tx.Sign(callerPK)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign a transaction: %v", failed, err)
	}

	if err := st.SubmitWalletTransaction(signedTx); err != nil {
		t.Fatalf("\t%s\tShould be able to submit a transaction: %v", failed, err)
	}
}

func Test_CreateAndSignUp(t *testing.T) {
	t.Log("Given the need to process whitelist realm calls through blocks.")
	{
		t.Logf("\tTest 0:\tWhen submitting a create call and producing a block.")
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct storage: %v", failed, err)
			}
			st, callerID := newTestState(t, strg)
			defer st.Shutdown()

			data, err := database.NewCreateCall("launch party", 100, 1)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to encode a create call: %v", failed, err)
			}
			submitRealmCall(t, st, 1, data)

			block, err := st.ProduceBlock(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to produce a block: %v", failed, err)
			}
			if block.Header.Number != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould produce block number 1, got %d.", failed, block.Header.Number)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to produce block number 1.", success)

			if st.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould have an empty mempool after production.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have an empty mempool after production.", success)

			rec, err := st.QueryWhitelist(0)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find whitelist 0 in the registry: %v", failed, err)
			}
			if rec.Name() != "launch party" || !rec.OwnedBy(callerID.Address()) {
				t.Fatalf("\t%s\tTest 0:\tShould store the whitelist with the caller as owner.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould store the whitelist with the caller as owner.", success)

			account, err := st.QueryAccount(callerID)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to query the caller account: %v", failed, err)
			}
			if account.Nonce != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould update the caller nonce, got %d.", failed, account.Nonce)
			}
			if account.Balance != 1000-5 {
				t.Fatalf("\t%s\tTest 0:\tShould charge the gas fee, got balance %d.", failed, account.Balance)
			}
			t.Logf("\t%s\tTest 0:\tShould update the caller nonce and charge gas.", success)
		}

		t.Logf("\tTest 1:\tWhen signing up and filling the whitelist.")
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct storage: %v", failed, err)
			}
			st, callerID := newTestState(t, strg)
			defer st.Shutdown()

			data, err := database.NewCreateCall("launch party", 100, 1)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to encode a create call: %v", failed, err)
			}
			submitRealmCall(t, st, 1, data)

			if _, err := st.ProduceBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to produce a block: %v", failed, err)
			}

			time.Sleep(2 * time.Millisecond)

			data, err = database.NewSignUpCall(0)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to encode a signup call: %v", failed, err)
			}
			submitRealmCall(t, st, 2, data)

			if _, err := st.ProduceBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to produce a block: %v", failed, err)
			}

			rec, err := st.QueryWhitelist(0)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould find whitelist 0 in the registry: %v", failed, err)
			}
			roster := rec.Roster()
			if len(roster) != 1 || roster[0] != callerID.Address() {
				t.Fatalf("\t%s\tTest 1:\tShould have the caller at roster position 0.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould have the caller at roster position 0.", success)

			// A second signup from the same caller has to be rejected and
			// must not change the roster.
			time.Sleep(2 * time.Millisecond)

			data, err = database.NewSignUpCall(0)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to encode a signup call: %v", failed, err)
			}
			submitRealmCall(t, st, 3, data)

			if _, err := st.ProduceBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to produce a block: %v", failed, err)
			}

			rec, err = st.QueryWhitelist(0)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould find whitelist 0 in the registry: %v", failed, err)
			}
			if len(rec.Roster()) != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould leave the roster unchanged on a duplicate signup.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the roster unchanged on a duplicate signup.", success)
		}

		t.Logf("\tTest 2:\tWhen rendering the realm.")
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to construct storage: %v", failed, err)
			}
			st, _ := newTestState(t, strg)
			defer st.Shutdown()

			out := st.RenderRealm("")
			if !strings.Contains(out, "no whitelists") {
				t.Fatalf("\t%s\tTest 2:\tShould render the no whitelists notice: %q", failed, out)
			}
			t.Logf("\t%s\tTest 2:\tShould render the no whitelists notice.", success)

			out = st.RenderRealm("bogus")
			if !strings.Contains(out, "unknown page") {
				t.Fatalf("\t%s\tTest 2:\tShould render the unknown page notice: %q", failed, out)
			}
			t.Logf("\t%s\tTest 2:\tShould render the unknown page notice.", success)
		}
	}
}

func Test_Replay(t *testing.T) {
	t.Log("Given the need to rebuild realm state from blocks in storage.")
	{
		t.Logf("\tTest 0:\tWhen reopening the database over existing blocks.")
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct storage: %v", failed, err)
			}
			st, callerID := newTestState(t, strg)

			data, err := database.NewCreateCall("launch party", 100, 2)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to encode a create call: %v", failed, err)
			}
			submitRealmCall(t, st, 1, data)

			if _, err := st.ProduceBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to produce a block: %v", failed, err)
			}

			time.Sleep(2 * time.Millisecond)

			data, err = database.NewSignUpCall(0)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to encode a signup call: %v", failed, err)
			}
			submitRealmCall(t, st, 2, data)

			if _, err := st.ProduceBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to produce a block: %v", failed, err)
			}
			st.Shutdown()

			// A brand new state over the same storage must rebuild the
			// identical registry by replaying the blocks.
			st2, _ := newTestState(t, strg)
			defer st2.Shutdown()

			if st2.RetrieveLatestBlock().Header.Number != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould replay up to block 2, got %d.", failed, st2.RetrieveLatestBlock().Header.Number)
			}
			t.Logf("\t%s\tTest 0:\tShould replay up to block 2.", success)

			rec, err := st2.QueryWhitelist(0)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find whitelist 0 after replay: %v", failed, err)
			}
			roster := rec.Roster()
			if len(roster) != 1 || roster[0] != callerID.Address() {
				t.Fatalf("\t%s\tTest 0:\tShould rebuild the roster from the blocks.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould rebuild the roster from the blocks.", success)
		}
	}
}
