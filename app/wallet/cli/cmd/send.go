package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	url      string
	prevOuts []string
	to       string
	value    uint64
	lockTime uint32
	sequence uint32
	printHex bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a new transaction and submit it to a node",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringSliceVarP(&prevOuts, "prev", "i", nil, "Hash of the output being spent, at most one.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Receiving key name in the account path or hex compressed public key.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.Flags().Uint32VarP(&lockTime, "lock-time", "l", 0, "Block height or unix time before which the transaction can't be mined.")
	sendCmd.Flags().Uint32VarP(&sequence, "sequence", "s", 0xFFFFFFFF, "Sequence number for the input.")
	sendCmd.Flags().BoolVar(&printHex, "print", false, "Print the canonical encoding instead of sending.")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	lockingScript, err := receiver(to)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := BuildTransaction(prevOuts, lockingScript, value, lockTime, sequence, privateKey)
	if err != nil {
		log.Fatal(err)
	}

	if printHex {
		fmt.Println(hexutil.Encode(database.EncodeTransaction(tx)))
		return
	}

	data, err := json.Marshal(tx)
	if err != nil {
		log.Fatal(err)
	}

	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("%d: %s\n", resp.StatusCode, string(body))
}

// ErrTooManyInputs is returned when more than one output is being spent. A
// signature covers the unlocking scripts of every other input, so signing a
// second input invalidates the first.
var ErrTooManyInputs = errors.New("a wallet transaction spends at most one output")

// BuildTransaction constructs a transaction paying value to the locking
// script and signs its input with the private key.
func BuildTransaction(prevOuts []string, lockingScript []byte, value uint64, lockTime uint32, sequence uint32, privateKey *ecdsa.PrivateKey) (database.Transaction, error) {
	if len(prevOuts) > 1 {
		return database.Transaction{}, fmt.Errorf("%w: got %d", ErrTooManyInputs, len(prevOuts))
	}

	var inputs []database.TxIn
	for _, prev := range prevOuts {
		b, err := hexutil.Decode(prev)
		if err != nil || len(b) != common.HashLength {
			return database.Transaction{}, fmt.Errorf("invalid previous output %q", prev)
		}
		inputs = append(inputs, database.NewTxIn(common.BytesToHash(b), nil, sequence))
	}

	outputs := []database.TxOut{database.NewTxOut(value, lockingScript)}
	tx := database.NewTransaction(1, inputs, outputs, lockTime)

	if len(tx.Inputs) == 1 {
		if err := tx.Sign(0, privateKey); err != nil {
			return database.Transaction{}, err
		}
	}

	return tx, nil
}

// receiver returns the locking script for the receiver, the compressed
// public key of a key file or the decoded hex value.
func receiver(to string) ([]byte, error) {
	if to == "" {
		return nil, nil
	}

	if strings.HasPrefix(to, "0x") {
		return hexutil.Decode(to)
	}

	privateKey, err := crypto.LoadECDSA(keyPath(to))
	if err != nil {
		return nil, fmt.Errorf("loading receiver %q: %w", to, err)
	}

	return signature.PublicKeyBytes(privateKey.PublicKey), nil
}
