package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
)

// submitTx signs the transaction with the wallet key and posts it to the
// node for inclusion in the mempool.
func submitTx(privateKey *ecdsa.PrivateKey, tx database.Tx) error {
	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		return err
	}

	data, err := json.Marshal(signedTx)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node rejected transaction: %s", string(body))
	}

	fmt.Println(string(body))
	return nil
}
