// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sizes of the parts of an unlocking script. The signature is the [R|S]
// form without the recovery id and the public key is compressed.
const (
	SignatureLength = crypto.RecoveryIDOffset
	PublicKeyLength = 33
	ScriptLength    = SignatureLength + PublicKeyLength
)

// ErrMalformedScript is returned when a script can't be split into a
// signature and a public key.
var ErrMalformedScript = errors.New("malformed unlocking script")

// =============================================================================

// Sign uses the specified private key to sign the message and returns the
// unlocking script: the 64 byte signature followed by the compressed public key.
func Sign(message []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {

	// Prepare the message for signing.
	data := stamp(message)

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, err
	}

	// Check the signature against the public key before handing it out.
	publicKey := crypto.CompressPubkey(&privateKey.PublicKey)
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(publicKey, data, rs) {
		return nil, errors.New("invalid signature")
	}

	script := make([]byte, 0, ScriptLength)
	script = append(script, rs...)
	script = append(script, publicKey...)

	return script, nil
}

// Verify checks the unlocking script was produced by signing the message.
// It never fails with an error, any malformed script is simply not valid.
func Verify(message []byte, script []byte) bool {
	sig, publicKey, err := Split(script)
	if err != nil {
		return false
	}

	return crypto.VerifySignature(publicKey, stamp(message), sig)
}

// Split breaks the unlocking script into its signature and public key parts.
// Any bytes after the public key are ignored.
func Split(script []byte) (sig []byte, publicKey []byte, err error) {
	if len(script) < ScriptLength {
		return nil, nil, fmt.Errorf("%w: length %d, need %d", ErrMalformedScript, len(script), ScriptLength)
	}

	return script[:SignatureLength], script[SignatureLength:ScriptLength], nil
}

// PublicKeyBytes returns the compressed form of the public key. This is the
// form carried in unlocking scripts and used as a locking script by the wallet.
func PublicKeyBytes(publicKey ecdsa.PublicKey) []byte {
	return crypto.CompressPubkey(&publicKey)
}

// PublicKeyString returns the compressed public key as a hex string.
func PublicKeyString(publicKey ecdsa.PublicKey) string {
	return hexutil.Encode(PublicKeyBytes(publicKey))
}

// ScriptPublicKey returns the hex form of the public key carried by the
// unlocking script, or an empty string if the script is malformed.
func ScriptPublicKey(script []byte) string {
	_, publicKey, err := Split(script)
	if err != nil {
		return ""
	}

	return hexutil.Encode(publicKey)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this message with
// the ledger stamp embedded into the final hash.
func stamp(message []byte) []byte {

	// Hash the message into a 32 byte array. This will provide
	// a data length consistency with all messages.
	txHash := crypto.Keccak256(message)

	// This stamp is used so signatures we produce when signing
	// transactions are always unique to this ledger.
	stamp := []byte("\x19Ledger Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the message.
	return crypto.Keccak256(stamp, txHash)
}
