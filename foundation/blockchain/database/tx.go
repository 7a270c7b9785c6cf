package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrInputIndexOutOfRange is returned when signing an input that doesn't
// exist. The transaction is not modified.
var ErrInputIndexOutOfRange = errors.New("input index out of range")

// =============================================================================

// TxIn references a prior output and carries the authorization to spend it.
type TxIn struct {
	PreviousOutput  common.Hash   `json:"previous_output"`  // Bitcoin: Hash of the output being spent.
	UnlockingScript hexutil.Bytes `json:"unlocking_script"` // Bitcoin: scriptSig. Signature and public key once signed.
	Sequence        uint32        `json:"sequence"`         // Bitcoin: Sequence number.
}

// NewTxIn constructs a new transaction input.
func NewTxIn(previousOutput common.Hash, unlockingScript []byte, sequence uint32) TxIn {
	return TxIn{
		PreviousOutput:  previousOutput,
		UnlockingScript: unlockingScript,
		Sequence:        sequence,
	}
}

// TxOut represents a spendable amount with an opaque encumbrance.
type TxOut struct {
	Value         uint64        `json:"value"`          // Bitcoin: Amount being transferred.
	LockingScript hexutil.Bytes `json:"locking_script"` // Bitcoin: scriptPubKey. Condition to spend this output.
}

// NewTxOut constructs a new transaction output.
func NewTxOut(value uint64, lockingScript []byte) TxOut {
	return TxOut{
		Value:         value,
		LockingScript: lockingScript,
	}
}

// =============================================================================

// Transaction is the signed unit of value transfer.
type Transaction struct {
	Version  uint32  `json:"version"`   // Bitcoin: Transaction format version.
	Inputs   []TxIn  `json:"inputs"`    // Bitcoin: Outputs being spent.
	Outputs  []TxOut `json:"outputs"`   // Bitcoin: New outputs being created.
	LockTime uint32  `json:"lock_time"` // Bitcoin: Block height or unix time before which the tx can't be mined.
}

// NewTransaction constructs a new transaction. A transaction with no inputs
// or outputs is structurally valid.
func NewTransaction(version uint32, inputs []TxIn, outputs []TxOut, lockTime uint32) Transaction {
	return Transaction{
		Version:  version,
		Inputs:   inputs,
		Outputs:  outputs,
		LockTime: lockTime,
	}
}

// ID returns the content hash of the transaction.
func (tx Transaction) ID() common.Hash {
	return Digest(EncodeTransaction(tx))
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction.
func (tx Transaction) Hash() ([]byte, error) {
	id := tx.ID()
	return id[:], nil
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions. Transactions with the same content hash
// are the same.
func (tx Transaction) Equals(otherTx Transaction) bool {
	return tx.ID() == otherTx.ID()
}

// Sign signs the transaction for the specified input with the private key.
// The message is the encoded transaction with this input's script cleared,
// and the resulting unlocking script is signature followed by public key.
func (tx *Transaction) Sign(inputIndex int, privateKey *ecdsa.PrivateKey) error {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return fmt.Errorf("%w: index %d, inputs %d", ErrInputIndexOutOfRange, inputIndex, len(tx.Inputs))
	}

	script, err := signature.Sign(tx.signingMessage(inputIndex), privateKey)
	if err != nil {
		return fmt.Errorf("signing input %d: %w", inputIndex, err)
	}

	tx.Inputs[inputIndex].UnlockingScript = script

	return nil
}

// VerifySignature checks the unlocking script of the specified input. It
// returns false for an index out of range or a script too short to hold a
// signature and public key. The transaction is not modified.
func (tx Transaction) VerifySignature(inputIndex int) bool {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return false
	}

	script := tx.Inputs[inputIndex].UnlockingScript
	if len(script) < signature.ScriptLength {
		return false
	}

	return signature.Verify(tx.signingMessage(inputIndex), script)
}

// Clone returns a deep copy of the transaction.
func (tx Transaction) Clone() Transaction {
	cpy := Transaction{
		Version:  tx.Version,
		LockTime: tx.LockTime,
	}

	if tx.Inputs != nil {
		cpy.Inputs = make([]TxIn, len(tx.Inputs))
		for i, in := range tx.Inputs {
			in.UnlockingScript = cloneBytes(in.UnlockingScript)
			cpy.Inputs[i] = in
		}
	}

	if tx.Outputs != nil {
		cpy.Outputs = make([]TxOut, len(tx.Outputs))
		for i, out := range tx.Outputs {
			out.LockingScript = cloneBytes(out.LockingScript)
			cpy.Outputs[i] = out
		}
	}

	return cpy
}

// TotalValue returns the sum of the output values.
func (tx Transaction) TotalValue() uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Value
	}
	return total
}

// String implements the fmt.Stringer interface for logging. This form is
// only for people, it's never used for hashing.
func (tx Transaction) String() string {
	id := tx.ID()
	return fmt.Sprintf("%s:in[%d]:out[%d]:lock[%d]", id.Hex()[:18], len(tx.Inputs), len(tx.Outputs), tx.LockTime)
}

// signingMessage returns the encoded transaction with the unlocking script of
// the specified input cleared. The receiver is a copy, so it's cloned before
// the script is cleared to leave the caller's inputs untouched.
func (tx Transaction) signingMessage(inputIndex int) []byte {
	cpy := tx.Clone()
	cpy.Inputs[inputIndex].UnlockingScript = nil

	return EncodeTransaction(cpy)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
