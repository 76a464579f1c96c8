package utils

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
)

// GenerateKeyPair generates a new RSA key pair.
func GenerateKeyPair(bits int) (*rsa.PrivateKey, *rsa.PublicKey) {
	privkey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil
	}
	return privkey, &privkey.PublicKey
}

// PrivateKeyToBytes serializes a private key to PEM.
func PrivateKeyToBytes(priv *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(priv),
		},
	)
}

// PublicKeyToBytes serializes a public key to PKIX DER bytes. This is the form
// that travels inside outputs and identifies the owner.
func PublicKeyToBytes(pub *rsa.PublicKey) []byte {
	pubASN1, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil
	}
	return pubASN1
}

// BytesToPrivateKey parses a PEM encoded private key.
func BytesToPrivateKey(priv []byte) *rsa.PrivateKey {
	block, _ := pem.Decode(priv)
	if block == nil {
		return nil
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil
	}
	return key
}

// BytesToPublicKey parses PKIX DER bytes back into a public key.
func BytesToPublicKey(pub []byte) *rsa.PublicKey {
	ifc, err := x509.ParsePKIXPublicKey(pub)
	if err != nil {
		return nil
	}
	key, ok := ifc.(*rsa.PublicKey)
	if !ok {
		return nil
	}
	return key
}

// SHA256 hashes the message.
func SHA256(msg []byte) []byte {
	h := crypto.SHA256.New()
	h.Write(msg)
	return h.Sum(nil)
}

// Sign a message's SHA256 digest with the provided private key.
func Sign(msg []byte, sk *rsa.PrivateKey) ([]byte, error) {
	digest := SHA256(msg)
	var opts rsa.PSSOptions
	opts.SaltLength = rsa.PSSSaltLengthAuto
	return rsa.SignPSS(rand.Reader, sk, crypto.SHA256, digest, &opts)
}

// Verify the given signature matches the message.
func Verify(msg []byte, pk *rsa.PublicKey, signature []byte) bool {
	digest := SHA256(msg)
	var opts rsa.PSSOptions
	opts.SaltLength = rsa.PSSSaltLengthAuto
	return rsa.VerifyPSS(pk, crypto.SHA256, digest, signature, &opts) == nil
}
