package public

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// newTxIn is the form of a transaction input submitted by a wallet.
type newTxIn struct {
	PreviousOutput  string `json:"previous_output" validate:"required,startswith=0x,len=66,hexadecimal"`
	UnlockingScript string `json:"unlocking_script" validate:"omitempty,startswith=0x"`
	Sequence        uint32 `json:"sequence"`
}

// newTxOut is the form of a transaction output submitted by a wallet.
type newTxOut struct {
	Value         uint64 `json:"value"`
	LockingScript string `json:"locking_script" validate:"omitempty,startswith=0x"`
}

// NewTx is the form of a transaction submitted by a wallet. Scripts are hex
// encoded with a 0x prefix.
type NewTx struct {
	Version  uint32     `json:"version"`
	Inputs   []newTxIn  `json:"inputs" validate:"dive"`
	Outputs  []newTxOut `json:"outputs" validate:"dive"`
	LockTime uint32     `json:"lock_time"`
}

// toTransaction converts the submitted form into a ledger transaction.
func (ntx NewTx) toTransaction() (database.Transaction, error) {
	tx := database.Transaction{
		Version:  ntx.Version,
		LockTime: ntx.LockTime,
	}

	for i, in := range ntx.Inputs {
		script, err := decodeHex(in.UnlockingScript)
		if err != nil {
			return database.Transaction{}, fmt.Errorf("input %d: unlocking_script: %w", i, err)
		}
		tx.Inputs = append(tx.Inputs, database.NewTxIn(common.HexToHash(in.PreviousOutput), script, in.Sequence))
	}

	for i, out := range ntx.Outputs {
		script, err := decodeHex(out.LockingScript)
		if err != nil {
			return database.Transaction{}, fmt.Errorf("output %d: locking_script: %w", i, err)
		}
		tx.Outputs = append(tx.Outputs, database.NewTxOut(out.Value, script))
	}

	return tx, nil
}

// decodeHex treats an empty string as an empty script.
func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hexutil.Decode(s)
}

// =============================================================================

type txIn struct {
	PreviousOutput  common.Hash   `json:"previous_output"`
	UnlockingScript hexutil.Bytes `json:"unlocking_script"`
	Sequence        uint32        `json:"sequence"`
	Signer          string        `json:"signer,omitempty"`
	Verified        bool          `json:"verified"`
}

type txOut struct {
	Value         uint64        `json:"value"`
	LockingScript hexutil.Bytes `json:"locking_script"`
	Owner         string        `json:"owner,omitempty"`
}

type tx struct {
	ID         common.Hash `json:"id"`
	Version    uint32      `json:"version"`
	Inputs     []txIn      `json:"inputs"`
	Outputs    []txOut     `json:"outputs"`
	LockTime   uint32      `json:"lock_time"`
	TotalValue uint64      `json:"total_value"`
}

type block struct {
	Number       uint64               `json:"number"`
	Hash         common.Hash          `json:"hash"`
	Header       database.BlockHeader `json:"header"`
	Transactions []tx                 `json:"transactions"`
}

type status struct {
	LatestBlockHash common.Hash `json:"latest_block_hash"`
	Height          uint64      `json:"height"`
	Pending         int         `json:"pending"`
	Difficulty      int         `json:"difficulty"`
	KnownPeers      []string    `json:"known_peers"`
}

type proof struct {
	Number     uint64        `json:"number"`
	TxID       common.Hash   `json:"tx_id"`
	MerkleRoot common.Hash   `json:"merkle_root"`
	Proof      []common.Hash `json:"proof"`
	Order      []int64       `json:"order"`
	Verified   bool          `json:"verified"`
}

// =============================================================================

func toTx(ns *nameservice.NameService, tran database.Transaction) tx {
	ins := make([]txIn, len(tran.Inputs))
	for i, in := range tran.Inputs {
		ins[i] = txIn{
			PreviousOutput:  in.PreviousOutput,
			UnlockingScript: in.UnlockingScript,
			Sequence:        in.Sequence,
			Signer:          ns.LookupScript(in.UnlockingScript),
			Verified:        tran.VerifySignature(i),
		}
	}

	outs := make([]txOut, len(tran.Outputs))
	for i, out := range tran.Outputs {
		outs[i] = txOut{
			Value:         out.Value,
			LockingScript: out.LockingScript,
			Owner:         ns.LookupLockingScript(out.LockingScript),
		}
	}

	return tx{
		ID:         tran.ID(),
		Version:    tran.Version,
		Inputs:     ins,
		Outputs:    outs,
		LockTime:   tran.LockTime,
		TotalValue: tran.TotalValue(),
	}
}

func toTxs(ns *nameservice.NameService, trans []database.Transaction) []tx {
	txs := make([]tx, len(trans))
	for i, tran := range trans {
		txs[i] = toTx(ns, tran)
	}
	return txs
}

func toBlock(ns *nameservice.NameService, number uint64, blk database.Block) block {
	return block{
		Number:       number,
		Hash:         blk.Hash(),
		Header:       blk.Header,
		Transactions: toTxs(ns, blk.Transactions),
	}
}
