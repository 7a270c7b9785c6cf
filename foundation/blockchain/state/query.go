package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ethereum/go-ethereum/common"
)

// Blocks returns a copy of the chain, genesis first.
func (s *State) Blocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]database.Block, len(s.blocks))
	for i, block := range s.blocks {
		blocks[i] = block.Clone()
	}

	return blocks
}

// QueryBlock returns the block at the specified index, where the genesis
// block is index 0.
func (s *State) QueryBlock(number uint64) (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if number >= uint64(len(s.blocks)) {
		return database.Block{}, fmt.Errorf("block %d: %w", number, ErrNotFound)
	}

	return s.blocks[number].Clone(), nil
}

// QueryBlockNumber returns the index of the block with the specified hash.
// The search starts at the tip since recent blocks are asked for most.
func (s *State) QueryBlockNumber(hash common.Hash) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.blocks) - 1; i >= 0; i-- {
		if s.blocks[i].Hash() == hash {
			return uint64(i), nil
		}
	}

	return 0, fmt.Errorf("block %s: %w", hash, ErrNotFound)
}

// LatestBlock returns a copy of the chain tip.
func (s *State) LatestBlock() database.Block {
	block, _ := s.tip()
	return block.Clone()
}

// Height returns the number of blocks in the chain, including genesis.
func (s *State) Height() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.blocks))
}

// Mempool returns a copy of the pending transactions in queue order.
func (s *State) Mempool() []database.Transaction {
	return s.mempool.Copy()
}

// MempoolLength returns the number of pending transactions.
func (s *State) MempoolLength() int {
	return s.mempool.Count()
}

// Difficulty returns the number of leading zero bytes a mined block hash
// must have.
func (s *State) Difficulty() int {
	return s.difficulty
}

// Status returns a snapshot of the node's chain state for peers and status
// endpoints. The height and pool are read separately, so they're only
// consistent with each other when nothing is being appended.
func (s *State) Status() peer.PeerStatus {
	latestBlock, height := s.tip()

	return peer.PeerStatus{
		LatestBlockHash: latestBlock.Hash(),
		Height:          height,
		Pending:         s.mempool.Count(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}

// =============================================================================

// RetrieveKnownPeers retrieves a copy of the known peer list, excluding
// this node.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}
