package signature_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey  = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	pkHexKey2 = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	message := []byte("pay bill 100")

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	script, err := signature.Sign(message, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if len(script) != signature.ScriptLength {
		t.Logf("got: %d", len(script))
		t.Logf("exp: %d", signature.ScriptLength)
		t.Fatalf("Should get back a script of the right length.")
	}

	if !signature.Verify(message, script) {
		t.Fatalf("Should be able to verify the signature.")
	}

	_, publicKey, err := signature.Split(script)
	if err != nil {
		t.Fatalf("Should be able to split the script: %s", err)
	}

	if !bytes.Equal(publicKey, signature.PublicKeyBytes(pk.PublicKey)) {
		t.Fatalf("Should carry the signer's compressed public key.")
	}

	if signature.ScriptPublicKey(script) != signature.PublicKeyString(pk.PublicKey) {
		t.Logf("got: %s", signature.ScriptPublicKey(script))
		t.Logf("exp: %s", signature.PublicKeyString(pk.PublicKey))
		t.Fatalf("Should get back the right public key string.")
	}
}

func Test_Tampering(t *testing.T) {
	message := []byte("pay bill 100")

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	pk2, err := crypto.HexToECDSA(pkHexKey2)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	script, err := signature.Sign(message, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	type table struct {
		name    string
		message []byte
		script  func() []byte
	}

	tt := []table{
		{
			name:    "message",
			message: []byte("pay bill 900"),
			script:  func() []byte { return script },
		},
		{
			name:    "signature",
			message: message,
			script: func() []byte {
				s := bytes.Clone(script)
				s[10] ^= 0xFF
				return s
			},
		},
		{
			name:    "publickey",
			message: message,
			script: func() []byte {
				s := bytes.Clone(script)
				copy(s[signature.SignatureLength:], signature.PublicKeyBytes(pk2.PublicKey))
				return s
			},
		},
		{
			name:    "short",
			message: message,
			script:  func() []byte { return script[:signature.ScriptLength-1] },
		},
		{
			name:    "empty",
			message: message,
			script:  func() []byte { return nil },
		},
		{
			name:    "garbage-key",
			message: message,
			script: func() []byte {
				s := bytes.Clone(script)
				for i := signature.SignatureLength; i < len(s); i++ {
					s[i] = 0xFF
				}
				return s
			},
		},
	}

	t.Log("Given the need to reject altered signatures.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				if signature.Verify(tst.message, tst.script()) {
					t.Fatalf("\t%s\tTest %d:\tShould not verify with altered %s.", failed, testID, tst.name)
				}
				t.Logf("\t%s\tTest %d:\tShould not verify with altered %s.", success, testID, tst.name)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Split(t *testing.T) {
	if _, _, err := signature.Split(make([]byte, 10)); !errors.Is(err, signature.ErrMalformedScript) {
		t.Fatalf("Should get a malformed script error: %v", err)
	}

	if signature.ScriptPublicKey(make([]byte, 10)) != "" {
		t.Fatalf("Should get an empty public key for a malformed script.")
	}
}

func Test_SignConsistency(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	script1, err := signature.Sign([]byte("Bill"), pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	script2, err := signature.Sign([]byte("Jill"), pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if signature.ScriptPublicKey(script1) != signature.ScriptPublicKey(script2) {
		t.Errorf("Got: %s", signature.ScriptPublicKey(script1))
		t.Errorf("Got: %s", signature.ScriptPublicKey(script2))
		t.Fatalf("Should have the same public key.")
	}

	if signature.Verify([]byte("Jill"), script1) {
		t.Fatalf("Should not verify a signature against a different message.")
	}
}
