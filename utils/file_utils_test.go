package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeyFileRoundTrip(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "wallet.pem")

	created, err := ParseKeyFile(keyPath, true)
	assert.Nil(t, err)
	assert.NotNil(t, created)

	loaded, err := ParseKeyFile(keyPath, false)
	assert.Nil(t, err)
	assert.True(t, created.Equal(loaded))
}

func TestParseKeyFileMissing(t *testing.T) {
	_, err := ParseKeyFile("", false)
	assert.NotNil(t, err)

	_, err = ParseKeyFile(filepath.Join(t.TempDir(), "nope.pem"), false)
	assert.NotNil(t, err)
}
