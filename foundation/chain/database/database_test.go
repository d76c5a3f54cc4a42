package database_test

import (
	"crypto/ecdsa"
	"errors"
	"testing"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/chain/database/storage/memory"
	"github.com/ardanlabs/whitelist/foundation/chain/genesis"
	"github.com/ardanlabs/whitelist/foundation/realm/whitelist"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	signerHex    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	signerAddr   = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	beneficiary  = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
	realmAccount = "0x0000000000000000000000000000000000000001"
)

func newTestDatabase(t *testing.T, testID int) (*database.Database, *ecdsa.PrivateKey) {
	gen := genesis.Genesis{
		ChainID:       1,
		TransPerBlock: 10,
		Difficulty:    1,
		ProduceReward: 100,
		GasPrice:      5,
		RealmAccount:  realmAccount,
		Balances: map[string]uint64{
			signerAddr: 1000,
		},
	}

	storage, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %v", failed, testID, err)
	}

	db, err := database.New(gen, storage, func(v string, args ...any) {})
	if err != nil {
		t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
	}
	t.Logf("\t%s\tTest %d:\tShould be able to open database.", success, testID)

	pk, err := crypto.HexToECDSA(signerHex)
	if err != nil {
		t.Fatalf("\t%s\tTest %d:\tShould be able to load private key: %v", failed, testID, err)
	}

	return db, pk
}

func realmBlockTx(t *testing.T, testID int, pk *ecdsa.PrivateKey, nonce uint64, tip uint64, data []byte) database.BlockTx {
	tx, err := database.NewTx(1, nonce, realmAccount, 0, tip, data)
	if err != nil {
		t.Fatalf("\t%s\tTest %d:\tShould be able to construct transaction: %v", failed, testID, err)
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("\t%s\tTest %d:\tShould be able to sign transaction: %v", failed, testID, err)
	}

	return database.NewBlockTx(signedTx, 5, 1)
}

func Test_RealmCalls(t *testing.T) {
	t.Log("Given the need to execute realm calls carried by transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a create followed by a signup.", testID)
		{
			db, pk := newTestDatabase(t, testID)

			block := database.Block{
				Header: database.BlockHeader{
					Number:        1,
					BeneficiaryID: beneficiary,
				},
			}

			data, err := database.NewCreateCall("friends", 10, 2)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to encode create call: %v", failed, testID, err)
			}

			if err := db.ApplyTransaction(block, realmBlockTx(t, testID, pk, 1, 0, data)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply create transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to apply create transaction.", success, testID)

			rec, err := db.Whitelist(0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould find whitelist 0 in the registry: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find whitelist 0 in the registry.", success, testID)

			if rec.Name() != "friends" {
				t.Errorf("\t%s\tTest %d:\tShould have the correct name, got %q.", failed, testID, rec.Name())
			} else {
				t.Logf("\t%s\tTest %d:\tShould have the correct name.", success, testID)
			}

			if !rec.OwnedBy(whitelist.Address(signerAddr)) {
				t.Errorf("\t%s\tTest %d:\tShould record the signer as owner.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould record the signer as owner.", success, testID)
			}

			data, err = database.NewSignUpCall(0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to encode signup call: %v", failed, testID, err)
			}

			if err := db.ApplyTransaction(block, realmBlockTx(t, testID, pk, 2, 0, data)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply signup transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to apply signup transaction.", success, testID)

			rec, _ = db.Whitelist(0)
			if !rec.HasSigner(whitelist.Address(signerAddr)) {
				t.Errorf("\t%s\tTest %d:\tShould have the signer on the roster.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould have the signer on the roster.", success, testID)
			}
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen a realm call fails.", testID)
		{
			db, pk := newTestDatabase(t, testID)

			block := database.Block{
				Header: database.BlockHeader{
					Number:        1,
					BeneficiaryID: beneficiary,
				},
			}

			data, err := database.NewSignUpCall(42)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to encode signup call: %v", failed, testID, err)
			}

			err = db.ApplyTransaction(block, realmBlockTx(t, testID, pk, 1, 0, data))
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a signup to a missing whitelist.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a signup to a missing whitelist.", success, testID)

			if !errors.Is(err, whitelist.ErrNotFound) {
				t.Errorf("\t%s\tTest %d:\tShould classify the failure as not found, got: %v", failed, testID, err)
			} else {
				t.Logf("\t%s\tTest %d:\tShould classify the failure as not found.", success, testID)
			}

			// The gas fee is paid even though the call failed.
			account, err := db.Query(signerAddr)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query the signer account: %v", failed, testID, err)
			}
			if account.Balance != 995 {
				t.Errorf("\t%s\tTest %d:\tShould charge the gas fee, got balance %d, exp %d.", failed, testID, account.Balance, 995)
			} else {
				t.Logf("\t%s\tTest %d:\tShould charge the gas fee.", success, testID)
			}

			// The nonce still advances for the failed call.
			if account.Nonce != 1 {
				t.Errorf("\t%s\tTest %d:\tShould advance the nonce, got %d, exp %d.", failed, testID, account.Nonce, 1)
			} else {
				t.Logf("\t%s\tTest %d:\tShould advance the nonce.", success, testID)
			}

			if len(db.CopyWhitelists()) != 0 {
				t.Errorf("\t%s\tTest %d:\tShould leave the registry unchanged.", failed, testID)
			} else {
				t.Logf("\t%s\tTest %d:\tShould leave the registry unchanged.", success, testID)
			}
		}
	}
}

func Test_TransferAccounting(t *testing.T) {
	t.Log("Given the need to validate transfer accounting.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a basic transfer with a tip.", testID)
		{
			db, pk := newTestDatabase(t, testID)

			block := database.Block{
				Header: database.BlockHeader{
					Number:        1,
					BeneficiaryID: beneficiary,
				},
			}

			tx, err := database.NewTx(1, 1, "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 100, 50, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct transaction: %v", failed, testID, err)
			}

			signedTx, err := tx.Sign(pk)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign transaction: %v", failed, testID, err)
			}

			if err := db.ApplyTransaction(block, database.NewBlockTx(signedTx, 5, 1)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to apply transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to apply transaction.", success, testID)

			db.ApplyProduceReward(block)

			final := map[database.AccountID]uint64{
				signerAddr: 845,
				"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": 100,
				beneficiary: 155,
			}

			accounts := db.CopyAccounts()
			for accountID, expBalance := range final {
				account, exists := accounts[accountID]
				if !exists {
					t.Errorf("\t%s\tTest %d:\tShould have account %s in balances.", failed, testID, accountID)
					continue
				}

				if account.Balance != expBalance {
					t.Errorf("\t%s\tTest %d:\tShould have correct balance for %s, got %d, exp %d.", failed, testID, accountID, account.Balance, expBalance)
				} else {
					t.Logf("\t%s\tTest %d:\tShould have correct balance for %s.", success, testID, accountID)
				}
			}
		}
	}
}
