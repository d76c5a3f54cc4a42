package cmd

import (
	"log"

	"github.com/ardanlabs/whitelist/foundation/chain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	wlName     string
	wlDeadline uint64
	wlCapacity int
	tip        uint64
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new whitelist in the realm",
	Run:   createRun,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&wlName, "name", "n", "", "Name of the whitelist.")
	createCmd.Flags().Uint64VarP(&wlDeadline, "deadline", "d", 0, "Block height the whitelist closes at.")
	createCmd.Flags().IntVarP(&wlCapacity, "capacity", "c", 0, "Maximum number of signers.")
	createCmd.Flags().Uint64VarP(&tip, "tip", "t", 0, "Tip to offer the node.")
	createCmd.MarkFlagRequired("name")
	createCmd.MarkFlagRequired("deadline")
	createCmd.MarkFlagRequired("capacity")
}

func createRun(cmd *cobra.Command, args []string) {
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

	data, err := database.NewCreateCall(wlName, wlDeadline, wlCapacity)
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
