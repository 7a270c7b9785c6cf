// Package private maintains the group of handlers for node to node access.
// Transactions and blocks travel in their canonical binary encoding.
package private

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// SubmitNodeTransaction adds a transaction shared by a peer to the mempool.
// The transaction is not shared again.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	data, err := web.ReadBody(r)
	if err != nil {
		return errs.BadRequest(fmt.Errorf("unable to read payload: %w", err))
	}

	tx, err := database.DecodeTransaction(data)
	if err != nil {
		return errs.BadRequest(err)
	}

	h.Log.Infow("add node tran", "traceid", v.TraceID, "tx", tx, "lock_time", tx.LockTime)
	if err := h.State.SubmitNodeTransaction(tx); err != nil {
		return errs.BadRequest(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AddBlock links a block supplied by a peer to the chain tip and appends it.
// The proof of work isn't checked, the parent hash and merkle root are
// replaced during linking.
func (h Handlers) AddBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	data, err := web.ReadBody(r)
	if err != nil {
		return errs.BadRequest(fmt.Errorf("unable to read payload: %w", err))
	}

	block, err := database.DecodeBlock(data)
	if err != nil {
		return errs.BadRequest(err)
	}

	block = h.State.AddBlock(block)
	h.Log.Infow("add node block", "traceid", v.TraceID, "blk", block, "height", h.State.Height())

	resp := struct {
		Status string `json:"status"`
		Hash   string `json:"hash"`
	}{
		Status: "accepted",
		Hash:   block.Hash().Hex(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Status(), http.StatusOK)
}
