package state

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// AddBlock links the block to the current chain tip and appends it. This is
// the single place chain linking is enforced: the parent hash is set to the
// hash of the tip header and the merkle root is recomputed from the block's
// transactions, whatever values the block arrived with. The appended block
// is returned.
func (s *State) AddBlock(block database.Block) database.Block {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.addBlock(block)
}

// addBlock performs the linking and append. The caller must hold writeMu.
func (s *State) addBlock(block database.Block) database.Block {

	// The ledger owns its blocks, nothing the caller holds may alias them.
	block = block.Clone()

	s.mu.Lock()
	{
		block.Header.PrevBlockHash = database.ZeroHash
		if len(s.blocks) > 0 {
			block.Header.PrevBlockHash = s.blocks[len(s.blocks)-1].Hash()
		}

		block.Header.MerkleRoot = database.MerkleRoot(block.Transactions)

		s.blocks = append(s.blocks, block)
	}
	s.mu.Unlock()

	s.evHandler("state: addBlock: height[%d]: prevBlk[%s]: newBlk[%s]: numTrans[%d]", s.Height(), block.Header.PrevBlockHash, block.Hash(), len(block.Transactions))

	// Send an event about this new block.
	s.blockEvent(block)

	return block
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	blockTransJSON, err := json.Marshal(block.Transactions)
	if err != nil {
		blockTransJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"header":%s,"trans":%s}`, block.Hash(), string(blockHeaderJSON), string(blockTransJSON))
}
