package cmd

import (
	"log"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var wlID uint64

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Sign up to an existing whitelist",
	Run:   signupRun,
}

func init() {
	rootCmd.AddCommand(signupCmd)
	signupCmd.Flags().Uint64VarP(&wlID, "id", "i", 0, "Id of the whitelist to sign up to.")
	signupCmd.Flags().Uint64VarP(&tip, "tip", "t", 0, "Tip to offer the node.")
	signupCmd.MarkFlagRequired("id")
}

func signupRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	gen, err := getGenesis()
	if err != nil {
		log.Fatal(err)
	}

	realmAccountID, err := database.ToAccountID(gen.RealmAccount)
	if err != nil {
		log.Fatal(err)
	}

	nonce, err := getNonce(database.PublicKeyToAccountID(privateKey.PublicKey))
	if err != nil {
		log.Fatal(err)
	}

	data, err := database.NewSignUpCall(wlID)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := database.NewTx(gen.ChainID, nonce+1, realmAccountID, 0, tip, data)
	if err != nil {
		log.Fatal(err)
	}

	if err := submitTx(privateKey, tx); err != nil {
		log.Fatal(err)
	}
}
