package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volreg/volreg/errors"
)

func TestSignVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()

	msg := []byte("list token 1")
	sig := priv.Sign(msg)
	assert.True(t, pub.Verify(msg, sig))
	assert.False(t, pub.Verify([]byte("list token 2"), sig))

	other := GenPrivKeyEd25519().PublicKey()
	assert.False(t, other.Verify(msg, sig))
}

func TestDeterministicSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed).PublicKey().Address()
	b := PrivKeyEd25519FromSeed(seed).PublicKey().Address()
	assert.Equal(t, a, b)
	assert.NoError(t, a.Validate())

	ext, typ, _, err := PrivKeyEd25519FromSeed(seed).PublicKey().Condition().Parse()
	require.NoError(t, err)
	assert.Equal(t, ExtensionName, ext)
	assert.Equal(t, "ed25519", typ)
}

func TestParsePrivateKey(t *testing.T) {
	priv := GenPrivKeyEd25519()
	got, err := ParsePrivateKey(priv.String())
	require.NoError(t, err)
	assert.Equal(t, priv.PublicKey().Address(), got.PublicKey().Address())

	_, err = ParsePrivateKey("abcd")
	assert.True(t, errors.ErrInput.Is(err))
	_, err = ParsePrivateKey("zz")
	assert.True(t, errors.ErrInput.Is(err))
}
