package state

import (
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// LockTimeThreshold separates the two meanings of a transaction lock time.
// Below it the lock time is a block height, at or above it a unix timestamp.
const LockTimeThreshold = 500_000_000

// IsEligible applies the time lock policy to decide if the transaction can be
// included in a block mined at the specified chain height and time.
func IsEligible(tx database.Transaction, chainHeight uint32, now uint32) bool {
	switch {
	case tx.LockTime == 0:
		return true

	case tx.LockTime < LockTimeThreshold:
		return chainHeight >= tx.LockTime

	default:
		return now >= tx.LockTime
	}
}

// =============================================================================

// MineBlock takes every eligible transaction out of the mempool, mines a new
// block with them and appends it to the chain. Ineligible transactions stay
// in the mempool for a future attempt. A block is mined and appended even
// when nothing is eligible.
//
// The proof of work search blocks the calling goroutine and can't be
// cancelled. Only one block is mined or added at a time.
func (s *State) MineBlock() database.Block {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.evHandler("state: MineBlock: MINING: started")
	defer s.evHandler("state: MineBlock: MINING: completed")

	// Read the height and time once so every transaction is judged against
	// the same snapshot.
	latestBlock, height := s.tip()
	now := uint32(time.Now().UTC().Unix())

	trans := s.mempool.Drain(func(tx database.Transaction) bool {
		return IsEligible(tx, uint32(height), now)
	})

	s.evHandler("state: MineBlock: MINING: height[%d]: eligible[%d]: remaining[%d]", height, len(trans), s.mempool.Count())

	// The parent hash and merkle root are set before the search so the hash
	// that's solved is the hash of the header addBlock links.
	block := database.POW(database.POWArgs{
		PrevBlockHash: latestBlock.Hash(),
		TimeStamp:     now,
		Difficulty:    s.difficulty,
		Trans:         trans,
		EvHandler:     s.evHandler,
	})

	return s.addBlock(block)
}

// tip returns the latest block and the number of blocks in the chain.
func (s *State) tip() (database.Block, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks[len(s.blocks)-1], uint64(len(s.blocks))
}
