// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents a FIFO queue of transactions waiting to be mined. It's
// safe for concurrent use and the lock is only held for a single push or drain.
type Mempool struct {
	mu   sync.Mutex
	pool []database.Transaction
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return len(mp.pool)
}

// Push adds a transaction to the tail of the queue and returns the new
// size of the pool. No validation is performed.
func (mp *Mempool) Push(tx database.Transaction) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Drain removes and returns, in queue order, every transaction the selector
// accepts. Rejected transactions stay queued in their original order. The
// queue is replaced under a single lock so no push can interleave.
func (mp *Mempool) Drain(selectFn func(tx database.Transaction) bool) []database.Transaction {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var picked []database.Transaction
	var remain []database.Transaction

	for _, tx := range mp.pool {
		if selectFn(tx) {
			picked = append(picked, tx)
			continue
		}
		remain = append(remain, tx)
	}

	mp.pool = remain

	return picked
}

// Copy returns a copy of the transactions in queue order.
func (mp *Mempool) Copy() []database.Transaction {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	cpy := make([]database.Transaction, len(mp.pool))
	for i, tx := range mp.pool {
		cpy[i] = tx.Clone()
	}

	return cpy
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}
