// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client. The optional
// prefix query parameters limit the events to those starting with them,
// for example ?prefix=viewer: for new blocks only.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID, r.URL.Query()["prefix"]...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds a new transaction to the mempool and shares
// it with the known peers.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	if err := validate.Check(ntx); err != nil {
		return err
	}

	tran, err := ntx.toTransaction()
	if err != nil {
		return errs.BadRequest(err)
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "tx", tran, "inputs", len(tran.Inputs), "outputs", len(tran.Outputs), "lock_time", tran.LockTime)
	if err := h.State.SubmitWalletTransaction(tran); err != nil {
		return errs.BadRequest(err)
	}

	resp := struct {
		Status string      `json:"status"`
		ID     common.Hash `json:"id"`
	}{
		Status: "transaction added to mempool",
		ID:     tran.ID(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining asks the worker to mine a block with the eligible
// transactions. It returns before the block is mined.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("mining worker is not running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// MineBlock mines a block with the eligible transactions and returns it
// once it's appended.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk := h.State.MineBlock()

	number, err := h.State.QueryBlockNumber(blk.Hash())
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toBlock(h.NS, number, blk), http.StatusOK)
}

// Blocks returns the chain, genesis first.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.Blocks()

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(h.NS, uint64(i), blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// QueryBlock returns the block at the specified index, genesis being 0.
func (h Handlers) QueryBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, blk, err := h.queryBlock(r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toBlock(h.NS, number, blk), http.StatusOK)
}

// Mempool returns the set of uncommitted transactions in queue order.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.NS, h.State.Mempool()), http.StatusOK)
}

// Proof returns the merkle inclusion proof for a transaction in a block.
func (h Handlers) Proof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, blk, err := h.queryBlock(r)
	if err != nil {
		return err
	}

	hashStr := web.Param(r, "hash")
	hash, err := hexutil.Decode(hashStr)
	if err != nil || len(hash) != common.HashLength {
		return errs.BadRequest(fmt.Errorf("invalid transaction hash %q", hashStr))
	}
	txID := common.BytesToHash(hash)

	var tran database.Transaction
	var found bool
	for _, t := range blk.Transactions {
		if t.ID() == txID {
			tran, found = t, true
			break
		}
	}

	if !found {
		return errs.NotFound(fmt.Errorf("transaction %s not in block %d", txID, number))
	}

	tree, err := blk.Tree()
	if err != nil {
		return err
	}

	hashes, order, err := tree.Proof(tran)
	if err != nil {
		return err
	}

	verified, err := merkle.VerifyProof(txID[:], hashes, order, blk.Header.MerkleRoot[:], nil)
	if err != nil {
		return err
	}

	prf := proof{
		Number:     number,
		TxID:       txID,
		MerkleRoot: blk.Header.MerkleRoot,
		Proof:      make([]common.Hash, len(hashes)),
		Order:      order,
		Verified:   verified,
	}
	for i, ph := range hashes {
		prf.Proof[i] = common.BytesToHash(ph)
	}

	return web.Respond(ctx, w, prf, http.StatusOK)
}

// Status returns the current status of the ledger.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := h.State.Status()

	peers := make([]string, len(st.KnownPeers))
	for i, p := range st.KnownPeers {
		peers[i] = p.Host
	}

	resp := status{
		LatestBlockHash: st.LatestBlockHash,
		Height:          st.Height,
		Pending:         st.Pending,
		Difficulty:      h.State.Difficulty(),
		KnownPeers:      peers,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// queryBlock looks up the block named by the number parameter.
func (h Handlers) queryBlock(r *http.Request) (uint64, database.Block, error) {
	number, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return 0, database.Block{}, errs.BadRequest(fmt.Errorf("invalid block number: %w", err))
	}

	blk, err := h.State.QueryBlock(number)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return 0, database.Block{}, errs.NotFound(err)
		}
		return 0, database.Block{}, err
	}

	return number, blk, nil
}
