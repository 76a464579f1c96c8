package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const KEY_BITS = 2048

func TestSignatureAndVerify(t *testing.T) {
	sk, pk := GenerateKeyPair(KEY_BITS)

	message := []byte("Hello World!")
	sig, err := Sign(message, sk)
	assert.Nil(t, err)
	valid := Verify(message, pk, sig)
	assert.True(t, valid)

	// A tampered message must not verify.
	assert.False(t, Verify([]byte("Hello World?"), pk, sig))
}

func TestKeySerializationRoundTrip(t *testing.T) {
	sk, pk := GenerateKeyPair(KEY_BITS)

	skParsed := BytesToPrivateKey(PrivateKeyToBytes(sk))
	assert.NotNil(t, skParsed)
	assert.True(t, sk.Equal(skParsed))

	pkParsed := BytesToPublicKey(PublicKeyToBytes(pk))
	assert.NotNil(t, pkParsed)
	assert.True(t, pk.Equal(pkParsed))
}

func TestBytesToPublicKeyRejectsGarbage(t *testing.T) {
	assert.Nil(t, BytesToPublicKey([]byte("not a key")))
	assert.Nil(t, BytesToPrivateKey([]byte("not a key")))
}
