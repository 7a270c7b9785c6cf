// Package nameservice reads a folder of key files and creates a name
// service lookup for the public keys found in unlocking and locking scripts.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of compressed public keys for name lookup.
type NameService struct {
	keys map[string]string
}

// New constructs a name service with the keys from the specified folder.
// Every file with the .ecdsa extension is a key, named by its file name.
// A missing folder produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		keys: make(map[string]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		publicKey := signature.PublicKeyString(privateKey.PublicKey)
		ns.keys[publicKey] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ns, nil
		}
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified hex encoded public key. Unknown
// keys are returned as is, as is everything when the name service is nil.
func (ns *NameService) Lookup(publicKey string) string {
	if ns == nil {
		return publicKey
	}

	name, exists := ns.keys[publicKey]
	if !exists {
		return publicKey
	}
	return name
}

// LookupScript returns the name for the public key carried by an unlocking
// script. It returns an empty string for an unsigned or malformed script.
func (ns *NameService) LookupScript(script []byte) string {
	publicKey := signature.ScriptPublicKey(script)
	if publicKey == "" {
		return ""
	}
	return ns.Lookup(publicKey)
}

// LookupLockingScript returns the name for a locking script that holds a
// compressed public key, or an empty string if the script isn't a key.
func (ns *NameService) LookupLockingScript(script []byte) string {
	if len(script) != signature.PublicKeyLength {
		return ""
	}
	return ns.Lookup(hexutil.Encode(script))
}

// Copy returns a copy of the map of public keys and names.
func (ns *NameService) Copy() map[string]string {
	return maps.Clone(ns.keys)
}
