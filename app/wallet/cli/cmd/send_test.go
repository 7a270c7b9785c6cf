package cmd_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/app/wallet/cli/cmd"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/logger"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	prevOut1 = "0x0101010101010101010101010101010101010101010101010101010101010101"
	prevOut2 = "0x0202020202020202020202020202020202020202020202020202020202020202"
)

func Test_SendVerifiedSubmit(t *testing.T) {
	log, err := logger.New("TEST")
	if err != nil {
		t.Fatalf("Should be able to construct a logger: %s", err)
	}
	defer log.Sync()

	st, err := state.New(state.Config{Difficulty: 1, Host: "localhost:9080", VerifyOnSubmit: true})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	public := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		Evts:     events.New(),
	})

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	lockingScript := signature.PublicKeyBytes(pk.PublicKey)

	t.Log("Given the need to submit wallet transactions to a node checking signatures.")
	{
		t.Logf("\tTest 0:\tWhen spending a single output.")
		{
			tx, err := cmd.BuildTransaction([]string{prevOut1}, lockingScript, 25, 0, 0xFFFFFFFF, pk)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould build the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould build the transaction.", success)

			if !tx.VerifySignature(0) {
				t.Fatalf("\t%s\tTest 0:\tShould verify the signed input.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the signed input.", success)

			body, err := json.Marshal(tx)
			if err != nil {
				t.Fatalf("Should be able to marshal: %s", err)
			}

			r := httptest.NewRequest(http.MethodPost, "/v1/tx/submit", bytes.NewReader(body))
			w := httptest.NewRecorder()
			public.ServeHTTP(w, r)

			if w.Code != http.StatusOK || st.MempoolLength() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould be accepted by the node, got %d: %s", failed, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest 0:\tShould be accepted by the node.", success)
		}

		t.Logf("\tTest 1:\tWhen spending more than one output.")
		{
			_, err := cmd.BuildTransaction([]string{prevOut1, prevOut2}, lockingScript, 25, 0, 0xFFFFFFFF, pk)
			if !errors.Is(err, cmd.ErrTooManyInputs) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to build the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse to build the transaction.", success)
		}

		t.Logf("\tTest 2:\tWhen spending a malformed output.")
		{
			if _, err := cmd.BuildTransaction([]string{"0x01"}, lockingScript, 25, 0, 0xFFFFFFFF, pk); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject a short previous output.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject a short previous output.", success)
		}
	}
}
