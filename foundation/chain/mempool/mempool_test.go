package mempool_test

import (
	"testing"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/chain/mempool"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	key1 = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	key2 = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	toID = database.AccountID("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")
)

func sign(hexKey string, nonce uint64, tip uint64) (database.BlockTx, error) {
	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return database.BlockTx{}, err
	}

	tx, err := database.NewTx(1, nonce, toID, 0, tip, nil)
	if err != nil {
		return database.BlockTx{}, err
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		return database.BlockTx{}, err
	}

	return database.NewBlockTx(signedTx, 5, 1), nil
}

func Test_CRUD(t *testing.T) {
	t.Log("Given the need to validate mempool crud operations.")
	{
		t.Logf("\tTest 0:\tWhen managing transactions in the pool.")
		{
			mp := mempool.New()

			tx1, err := sign(key1, 1, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign transaction: %v", failed, err)
			}
			tx2, err := sign(key1, 2, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign transaction: %v", failed, err)
			}

			if _, err := mp.Upsert(tx1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to upsert a transaction: %v", failed, err)
			}
			if _, err := mp.Upsert(tx2); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to upsert a transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to upsert transactions.", success)

			if mp.Count() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould have 2 transactions in the pool, got %d.", failed, mp.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould have 2 transactions in the pool.", success)

			// Upserting the same account:nonce replaces, not adds.
			if _, err := mp.Upsert(tx1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to upsert a duplicate: %v", failed, err)
			}
			if mp.Count() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould still have 2 transactions in the pool, got %d.", failed, mp.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould replace on duplicate account and nonce.", success)

			if err := mp.Delete(tx1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to delete a transaction: %v", failed, err)
			}
			if mp.Count() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould have 1 transaction in the pool, got %d.", failed, mp.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould be able to delete a transaction.", success)

			mp.Truncate()
			if mp.Count() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould have an empty pool, got %d.", failed, mp.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould be able to truncate the pool.", success)
		}
	}
}

func Test_PickBest(t *testing.T) {
	t.Log("Given the need to validate transaction selection.")
	{
		t.Logf("\tTest 0:\tWhen picking transactions for the next block.")
		{
			mp := mempool.New()

			// Account 1 offers low tips with two nonces out of order.
			tx12, err := sign(key1, 2, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign transaction: %v", failed, err)
			}
			tx11, err := sign(key1, 1, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign transaction: %v", failed, err)
			}

			// Account 2 offers the best tip.
			tx21, err := sign(key2, 1, 100)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign transaction: %v", failed, err)
			}

			for _, tx := range []database.BlockTx{tx12, tx11, tx21} {
				if _, err := mp.Upsert(tx); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to upsert a transaction: %v", failed, err)
				}
			}

			picked := mp.PickBest(-1)
			if len(picked) != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould pick all 3 transactions, got %d.", failed, len(picked))
			}
			t.Logf("\t%s\tTest 0:\tShould pick all 3 transactions.", success)

			if picked[0].Tip != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould pick the best tipping account first, got tip %d.", failed, picked[0].Tip)
			}
			t.Logf("\t%s\tTest 0:\tShould pick the best tipping account first.", success)

			if picked[1].Nonce != 1 || picked[2].Nonce != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould keep an account's transactions in nonce order, got %d then %d.", failed, picked[1].Nonce, picked[2].Nonce)
			}
			t.Logf("\t%s\tTest 0:\tShould keep an account's transactions in nonce order.", success)

			picked = mp.PickBest(2)
			if len(picked) != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould honor the requested limit, got %d.", failed, len(picked))
			}
			t.Logf("\t%s\tTest 0:\tShould honor the requested limit.", success)
		}
	}
}
