package crypto

import (
	"encoding/hex"

	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used to construct the condition of key controlled
// accounts.
const ExtensionName = "sigs"

// PrivateKey is an ed25519 key controlling a marketplace account.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}
}

// ParsePrivateKey decodes a hex encoded private key as produced by String.
func ParsePrivateKey(enc string) (*PrivateKey, error) {
	raw, err := hex.DecodeString(enc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "cannot decode hex")
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.ErrInput.Newf("private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return &PrivateKey{key: ed25519.PrivateKey(raw)}, nil
}

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(p.key, message)
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := p.key.Public().(ed25519.PublicKey)
	return &PublicKey{key: pub}
}

// String returns the hex encoded key material.
func (p *PrivateKey) String() string {
	return hex.EncodeToString(p.key)
}

// PublicKey is the public part of an ed25519 key.
type PublicKey struct {
	key ed25519.PublicKey
}

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message, sig []byte) bool {
	return ed25519.Verify(p.key, message, sig)
}

// Condition encodes the public key into an account condition
func (p *PublicKey) Condition() volreg.Condition {
	return volreg.NewCondition(ExtensionName, "ed25519", p.key)
}

// Address returns the account address controlled by this key.
func (p *PublicKey) Address() volreg.Address {
	return p.Condition().Address()
}
