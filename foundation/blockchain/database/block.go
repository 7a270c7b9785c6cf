package database

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/decred/dcrd/crypto/rand"
	"github.com/ethereum/go-ethereum/common"
)

// BlockVersion is the header version written by this node.
const BlockVersion = 1

// =============================================================================

// BlockHeader represents common information required for each block. It's
// the unit hashed for chain linking and proof of work.
type BlockHeader struct {
	Version        uint32      `json:"version"`         // Bitcoin: Block format version.
	PrevBlockHash  common.Hash `json:"prev_block_hash"` // Bitcoin: Hash of the previous block in the chain.
	MerkleRoot     common.Hash `json:"merkle_root"`     // Bitcoin: Merkle tree root hash for the transactions in this block.
	TimeStamp      uint32      `json:"timestamp"`       // Bitcoin: Time the block was mined.
	DifficultyBits uint32      `json:"difficulty_bits"` // Bitcoin: Number of leading zero bits the hash was solved for.
	Nonce          uint32      `json:"nonce"`           // Bitcoin: Value identified to solve the hash solution.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header       BlockHeader   `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

// NewGenesisBlock constructs the first block of a chain. The genesis block
// is not mined, its nonce is a random value.
func NewGenesisBlock(timeStamp uint32) Block {
	return Block{
		Header: BlockHeader{
			Version:       BlockVersion,
			PrevBlockHash: ZeroHash,
			MerkleRoot:    ZeroHash,
			TimeStamp:     timeStamp,
			Nonce:         rand.Uint32(),
		},
	}
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() common.Hash {

	// CORE NOTE: Hashing the block header and not the whole block so the blockchain
	// can be cryptographically checked by only needing block headers and not full
	// blocks with the transaction data. The merkle root in the header commits to
	// the transactions.

	return HashHeader(b.Header)
}

// Tree constructs the merkle tree for the block's transactions. This is used
// to produce inclusion proofs.
func (b Block) Tree() (*merkle.Tree[Transaction], error) {
	return merkle.NewTree(b.Transactions)
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	cpy := Block{
		Header: b.Header,
	}

	if b.Transactions != nil {
		cpy.Transactions = make([]Transaction, len(b.Transactions))
		for i, tx := range b.Transactions {
			cpy.Transactions[i] = tx.Clone()
		}
	}

	return cpy
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%s:trans[%d]:nonce[%d]", b.Hash().Hex()[:18], len(b.Transactions), b.Header.Nonce)
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlockHash common.Hash
	TimeStamp     uint32
	Difficulty    int
	Trans         []Transaction
	EvHandler     func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle. The search can't be cancelled, it
// runs until a nonce is found.
func POW(args POWArgs) Block {
	ev := args.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	// Construct the block to be mined. The merkle root is computed up front
	// so the header being hashed is the header that gets linked.
	nb := Block{
		Header: BlockHeader{
			Version:        BlockVersion,
			PrevBlockHash:  args.PrevBlockHash,
			MerkleRoot:     MerkleRoot(args.Trans),
			TimeStamp:      args.TimeStamp,
			DifficultyBits: uint32(args.Difficulty) * 8,
			Nonce:          0, // Will be identified by the POW algorithm.
		},
		Transactions: args.Trans,
	}

	// Perform the proof of work mining operation.
	nb.performPOW(args.Difficulty, ev)

	return nb
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(difficulty int, ev func(v string, args ...any)) {
	ev("database: PerformPOW: MINING: started")
	defer ev("database: PerformPOW: MINING: completed")

	// Log the transactions that are a part of this potential block.
	for _, tx := range b.Transactions {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	// Choose a random starting point for the nonce. After this, the nonce
	// will be incremented by 1 until a solution is found.
	b.Header.Nonce = rand.Uint32()
	start := b.Header.Nonce

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.Hash()
		if IsHashSolved(difficulty, hash) {
			ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, hash)
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
			return
		}

		// The nonce wraps around silently. Once every nonce has been tried
		// the timestamp moves forward to give the search a fresh header.
		b.Header.Nonce++
		if b.Header.Nonce == start {
			b.Header.TimeStamp++
			ev("database: PerformPOW: MINING: nonce space exhausted: timestamp[%d]", b.Header.TimeStamp)
		}
	}
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// The difficulty is a count of leading bytes that must be zero.
func IsHashSolved(difficulty int, hash common.Hash) bool {
	if difficulty < 0 || difficulty > len(hash) {
		return false
	}

	for _, b := range hash[:difficulty] {
		if b != 0 {
			return false
		}
	}

	return true
}
