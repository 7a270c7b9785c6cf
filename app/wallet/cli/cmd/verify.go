package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <hex encoded transaction>",
	Short: "Decode a canonical transaction and verify the signature on every input",
	Args:  cobra.ExactArgs(1),
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func verifyRun(cmd *cobra.Command, args []string) {
	data, err := hexutil.Decode(args[0])
	if err != nil {
		log.Fatal(err)
	}

	tx, err := database.DecodeTransaction(data)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("tx %s: inputs[%d] outputs[%d] value[%d] lock[%d]\n", tx.ID(), len(tx.Inputs), len(tx.Outputs), tx.TotalValue(), tx.LockTime)

	failed := false
	for i, in := range tx.Inputs {
		ok := tx.VerifySignature(i)
		if !ok {
			failed = true
		}
		fmt.Printf("input %d: key[%s] verified[%t]\n", i, signature.ScriptPublicKey(in.UnlockingScript), ok)
	}

	if failed {
		log.Fatal("one or more inputs failed verification")
	}
}
