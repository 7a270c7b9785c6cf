// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ethereum/go-ethereum/common"
)

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and transaction sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalShareTx(tx database.Transaction)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Difficulty     int
	Host           string
	KnownPeers     *peer.PeerSet
	VerifyOnSubmit bool
	EvHandler      EventHandler
}

// State manages the blockchain ledger: the chain of blocks and the pool of
// transactions waiting to be mined.
type State struct {
	difficulty     int
	host           string
	verifyOnSubmit bool
	evHandler      EventHandler

	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool

	// writeMu serializes every append to the chain, mined or supplied, so the
	// tip can't move between linking a candidate and appending it.
	writeMu sync.Mutex

	// mu guards blocks. It's only held to read or append, never while
	// searching for a proof of work.
	mu     sync.RWMutex
	blocks []database.Block

	Worker Worker
}

// New constructs a new blockchain with a genesis block. The genesis block is
// not mined.
func New(cfg Config) (*State, error) {
	if cfg.Difficulty < 0 || cfg.Difficulty > common.HashLength {
		return nil, fmt.Errorf("difficulty %d must be between 0 and %d", cfg.Difficulty, common.HashLength)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	genesis := database.NewGenesisBlock(uint32(time.Now().UTC().Unix()))

	state := State{
		difficulty:     cfg.Difficulty,
		host:           cfg.Host,
		verifyOnSubmit: cfg.VerifyOnSubmit,
		evHandler:      ev,

		knownPeers: knownPeers,
		mempool:    mempool.New(),
		blocks:     []database.Block{genesis},
	}

	ev("state: New: genesis: blk[%s]", genesis.Hash())

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// ErrNotFound is returned when a requested block doesn't exist.
var ErrNotFound = errors.New("not found")
