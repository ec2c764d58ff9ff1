// Package volregtest provides identities and stores for tests.
package volregtest

import (
	"testing"

	"github.com/volreg/volreg"
	"github.com/volreg/volreg/crypto"
)

// NewKey returns a fresh ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signature condition of a fresh key.
func NewCondition() volreg.Condition {
	return NewKey().PublicKey().Condition()
}

// NewAddress returns the address of a fresh key.
func NewAddress() volreg.Address {
	return NewCondition().Address()
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation. It fails the test on malformed input.
func ParseAddress(t testing.TB, encodedAddress string) volreg.Address {
	t.Helper()

	addr, err := volreg.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
