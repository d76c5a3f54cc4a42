// Package cmd contains the commands for the wallet app.
package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ardanlabs/whitelist/foundation/chain/genesis"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	url         string
)

const (
	keyExtension = ".ecdsa"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Path to the private key.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet for the whitelist chain",
}

// Execute runs the root command for the wallet.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(accountName, keyExtension) {
		accountName += keyExtension
	}

	return filepath.Join(accountPath, accountName)
}

// getGenesis asks the node for its genesis settings. The wallet needs the
// chain id and the account the whitelist realm runs under.
func getGenesis() (genesis.Genesis, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/genesis/list", url))
	if err != nil {
		return genesis.Genesis{}, err
	}
	defer resp.Body.Close()

	var gen genesis.Genesis
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return genesis.Genesis{}, err
	}

	return gen, nil
}

// getNonce asks the node for the current nonce recorded for the account. The
// next transaction needs to carry this value plus one.
func getNonce(accountID database.AccountID) (uint64, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/list/%s", url, accountID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, nil
	}

	var accounts struct {
		Accounts []struct {
			Account database.AccountID `json:"account"`
			Nonce   uint64             `json:"nonce"`
		} `json:"accounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		return 0, err
	}

	for _, account := range accounts.Accounts {
		if account.Account == accountID {
			return account.Nonce, nil
		}
	}

	return 0, nil
}
