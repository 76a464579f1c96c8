package utils

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"

	"github.com/minichain-go/minichain/logx"
)

// ParseKeyFile loads the RSA key at fPath, generating and saving a fresh one
// when createNewKey is set.
func ParseKeyFile(fPath string, createNewKey bool) (*rsa.PrivateKey, error) {
	if fPath == "" {
		return nil, errors.New("file path is missing")
	}
	if createNewKey {
		logx.Info("generating a new key at %s", fPath)
		userKey, _ := GenerateKeyPair(2048)
		if userKey == nil {
			return nil, errors.New("failed to generate a new key")
		}
		if err := SavePrivateKeyToFile(userKey, fPath); err != nil {
			return nil, err
		}
		return userKey, nil
	}
	userKey, err := ReadKeyFromFile(fPath)
	if err != nil {
		logx.Error("failed to read key from path %s: %v", fPath, err)
		return nil, err
	}
	return userKey, nil
}

// SavePrivateKeyToFile writes the key in PEM form, owner-readable only.
func SavePrivateKeyToFile(privkey *rsa.PrivateKey, fpath string) error {
	return os.WriteFile(fpath, PrivateKeyToBytes(privkey), 0600)
}

func ReadKeyFromFile(fPath string) (*rsa.PrivateKey, error) {
	fileContent, err := os.ReadFile(fPath)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(fileContent)
	if block == nil {
		return nil, errors.New("file does not contain a PEM key")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	return key, nil
}
