package validate_test

import (
	"testing"

	"github.com/ardanlabs/powledger/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type input struct {
	Hash  string `json:"hash" validate:"required,startswith=0x,len=66,hexadecimal"`
	Items []item `json:"items" validate:"dive"`
}

type item struct {
	Script string `json:"script" validate:"omitempty,startswith=0x"`
}

func Test_Check(t *testing.T) {
	good := input{
		Hash:  "0x0000000000000000000000000000000000000000000000000000000000000001",
		Items: []item{{Script: ""}, {Script: "0xab"}},
	}

	if err := validate.Check(good); err != nil {
		t.Fatalf("\t%s\tShould accept a valid value: %v", failed, err)
	}
	t.Logf("\t%s\tShould accept a valid value.", success)

	bad := input{
		Hash:  "0x01",
		Items: []item{{Script: "ab"}},
	}

	err := validate.Check(bad)
	if !validate.IsFieldErrors(err) {
		t.Fatalf("\t%s\tShould get field errors: %v", failed, err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if _, exists := fields["hash"]; !exists {
		t.Fatalf("\t%s\tShould name the field by its json tag: %v", failed, fields)
	}
	if _, exists := fields["script"]; !exists {
		t.Fatalf("\t%s\tShould check nested values: %v", failed, fields)
	}
	t.Logf("\t%s\tShould report the invalid fields.", success)
}
