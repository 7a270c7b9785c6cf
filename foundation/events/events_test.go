package events_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	all := evts.Acquire("all")
	blocks := evts.Acquire("blocks", "viewer:")

	if evts.Count() != 2 {
		t.Fatalf("\t%s\tShould register two receivers, got %d.", failed, evts.Count())
	}

	if evts.Acquire("all") != all {
		t.Fatalf("\t%s\tShould get back the same channel for the same id.", failed)
	}

	evts.Send("state: AddTransaction")
	evts.Send("viewer: block")

	if msg := <-all; msg != "state: AddTransaction" {
		t.Fatalf("\t%s\tShould deliver in order, got %q.", failed, msg)
	}
	if msg := <-all; msg != "viewer: block" {
		t.Fatalf("\t%s\tShould deliver in order, got %q.", failed, msg)
	}
	t.Logf("\t%s\tShould deliver every message without a filter.", success)

	if msg := <-blocks; msg != "viewer: block" {
		t.Fatalf("\t%s\tShould only deliver matching messages, got %q.", failed, msg)
	}
	select {
	case msg := <-blocks:
		t.Fatalf("\t%s\tShould not deliver %q.", failed, msg)
	default:
	}
	t.Logf("\t%s\tShould only deliver matching messages with a filter.", success)

	for range 1000 {
		evts.Send("viewer: flood")
	}
	t.Logf("\t%s\tShould not block when a receiver is full.", success)

	if err := evts.Release("blocks"); err != nil {
		t.Fatalf("\t%s\tShould release the receiver: %v", failed, err)
	}
	for range blocks {
	}
	if err := evts.Release("blocks"); err == nil {
		t.Fatalf("\t%s\tShould not release a receiver twice.", failed)
	}
	t.Logf("\t%s\tShould release a receiver.", success)

	evts.Shutdown()
	if evts.Count() != 0 {
		t.Fatalf("\t%s\tShould remove every receiver on shutdown.", failed)
	}

	for range all {
	}
	t.Logf("\t%s\tShould close every channel on shutdown.", success)
}
