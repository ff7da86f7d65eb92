package aeswrapper

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecryptSuccess(t *testing.T) {
	data := make([]byte, 256)
	_, err := io.ReadFull(rand.Reader, data)
	assert.Nil(t, err)

	keys := []string{
		"f5f9fb83df631c6746dcc7fe7b21de1e2e33b2584428b37b911cf818a7cd9d84",
		"a531345e49fc6047f780174cbe8958397a70ed9ac5f2cafa9ab6598732cc70db",
		"1d457fe37e4d95c7afaa266952541d52c2b9ec6115793df570ddb66f18613881",
	}

	for i, k := range keys {
		pass, err := hex.DecodeString(k)
		assert.Nil(t, err)
		t.Run(fmt.Sprintf("TestEncryptDecryptSuccess-%d-%d", i, len(pass)), func(t *testing.T) {
			h := New()
			enc, err := h.Encrypt(pass, data)
			assert.Nil(t, err)
			dec, err := h.Decrypt(pass, enc)
			assert.Nil(t, err)
			assert.Equal(t, data, dec)
		})
	}
}

func TestEncryptFailsOnWrongKeyLength(t *testing.T) {
	data := []byte("travel rule payload")
	keys := []string{
		"f5f9fb83df631c6746dcc7fe7b21de1e2e33b2584428b37b911cf818a7cd9d",
		"a531345e49fc6047f780174cbe8958397a70ed9ac5f2cafa9ab6598732cc70dbaa",
		"1d457fe37e4d95c7afaa266952541d52c2b9ec6115793df5",
	}

	for i, k := range keys {
		pass, err := hex.DecodeString(k)
		assert.Nil(t, err)
		t.Run(fmt.Sprintf("TestEncryptFailsOnWrongKeyLength-%d-%d", i, len(pass)), func(t *testing.T) {
			h := New()
			_, err := h.Encrypt(pass, data)
			assert.NotNil(t, err)
		})
	}
}

func TestDecryptFailsOnGarbage(t *testing.T) {
	pass, err := hex.DecodeString("f5f9fb83df631c6746dcc7fe7b21de1e2e33b2584428b37b911cf818a7cd9d84")
	assert.Nil(t, err)

	h := New()
	_, err = h.Decrypt(pass, []byte("short"))
	assert.NotNil(t, err)

	garbage := make([]byte, 64)
	_, err = io.ReadFull(rand.Reader, garbage)
	assert.Nil(t, err)
	_, err = h.Decrypt(pass, garbage)
	assert.NotNil(t, err)
}
