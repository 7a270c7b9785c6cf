package database

import (
	"crypto/sha256"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/common"
)

// ZeroHash represents a hash code of zeros. It's the parent hash of the
// genesis block and the merkle root of a block with no transactions.
var ZeroHash common.Hash

// Digest returns the SHA-256 digest of the specified data.
func Digest(data []byte) common.Hash {
	return common.Hash(sha256.Sum256(data))
}

// HashHeader returns the digest of the canonical header encoding. The nonce
// is part of the encoding so every mining attempt produces a new hash.
func HashHeader(header BlockHeader) common.Hash {
	return Digest(EncodeHeader(header))
}

// MerkleRoot returns the merkle root for the ordered set of transactions.
// With no transactions the zero hash is returned as a sentinel.
func MerkleRoot(trans []Transaction) common.Hash {
	if len(trans) == 0 {
		return ZeroHash
	}

	// NewTree only fails for an empty set which is handled above.
	tree, err := merkle.NewTree(trans)
	if err != nil {
		panic(fmt.Sprintf("merkle root of %d transactions: %s", len(trans), err))
	}

	return common.BytesToHash(tree.MerkleRoot)
}
