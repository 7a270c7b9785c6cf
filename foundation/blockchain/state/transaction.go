package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// ErrInvalidSignature is returned by SubmitWalletTransaction when signature
// checks are turned on and an input doesn't verify.
var ErrInvalidSignature = errors.New("invalid signature")

// AddTransaction appends the transaction to the tail of the mempool. Admission
// is unconditional, eligibility is only evaluated when mining.
func (s *State) AddTransaction(tx database.Transaction) {
	n := s.mempool.Push(tx.Clone())
	s.evHandler("state: AddTransaction: tx[%s]: pending[%d]", tx, n)
}

// SubmitWalletTransaction accepts a transaction from a wallet for inclusion
// and shares it with the known peers.
func (s *State) SubmitWalletTransaction(tx database.Transaction) error {
	if s.verifyOnSubmit {
		if err := verifyInputs(tx); err != nil {
			return err
		}
	}

	s.AddTransaction(tx)

	if s.Worker != nil {
		s.Worker.SignalShareTx(tx)
	}

	return nil
}

// SubmitNodeTransaction accepts a transaction shared by another node. It's
// not shared again.
func (s *State) SubmitNodeTransaction(tx database.Transaction) error {
	if s.verifyOnSubmit {
		if err := verifyInputs(tx); err != nil {
			return err
		}
	}

	s.AddTransaction(tx)

	return nil
}

// =============================================================================

// verifyInputs checks the signature on every input.
func verifyInputs(tx database.Transaction) error {
	for i := range tx.Inputs {
		if !tx.VerifySignature(i) {
			return fmt.Errorf("%w: input %d", ErrInvalidSignature, i)
		}
	}

	return nil
}
