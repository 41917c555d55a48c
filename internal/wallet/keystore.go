package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"os"

	"github.com/Azurboy/MindVault-VibeSui/internal/crypto"
)

// keystoreFile is the on-disk wrapper around the sealed private key. Only
// the ciphertext is sensitive; the address is stored in the clear so tools
// can show which identity a keystore belongs to without the passphrase.
type keystoreFile struct {
	Version int    `json:"version"`
	Address string `json:"address"`
	Sealed  string `json:"sealed"`
}

const keystoreVersion = 1

var ErrKeystoreCorrupt = errors.New("wallet: keystore file corrupt")

// Save writes the wallet's private key to path, sealed under passphrase.
func (w *LocalWallet) Save(path string, passphrase []byte) error {
	sealed, err := crypto.SealKeystore(passphrase, w.priv)
	if err != nil {
		return err
	}
	f := keystoreFile{
		Version: keystoreVersion,
		Address: w.addr,
		Sealed:  crypto.ToBase64(sealed),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Load reads a keystore written by Save and unseals it with passphrase.
func Load(path string, passphrase []byte) (*LocalWallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f keystoreFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ErrKeystoreCorrupt
	}
	if f.Version != keystoreVersion || f.Sealed == "" {
		return nil, ErrKeystoreCorrupt
	}
	sealed, err := crypto.FromBase64(f.Sealed)
	if err != nil {
		return nil, ErrKeystoreCorrupt
	}
	priv, err := crypto.OpenKeystore(passphrase, sealed)
	if err != nil {
		return nil, err
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrKeystoreCorrupt
	}
	w := FromPrivateKey(ed25519.PrivateKey(priv))
	if f.Address != "" && f.Address != w.addr {
		return nil, ErrKeystoreCorrupt
	}
	return w, nil
}
