package fileoperations

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openvasp/openvasp-host/aeswrapper"
	"github.com/openvasp/openvasp-host/wallet"
)

func TestSaveReadWalletEncodeDecodeSuccess(t *testing.T) {
	s := aeswrapper.New()
	for i := 0; i < 10; i++ {
		t.Run(fmt.Sprintf("test-%d", i), func(t *testing.T) {
			key := make([]byte, 32)

			_, err := io.ReadFull(rand.Reader, key)
			assert.Nil(t, err)

			helper := New(Config{
				WalletPath:   filepath.Join(t.TempDir(), "test_wallet"),
				WalletPasswd: hex.EncodeToString(key),
			}, s)

			w0, err := wallet.New()
			assert.Nil(t, err)

			err = helper.SaveWallet(w0)
			assert.Nil(t, err)
			w1, err := helper.ReadWallet()
			assert.Nil(t, err)
			assert.Equal(t, w0.Private, w1.Private)
			assert.Equal(t, w0.Public, w1.Public)
		})
	}
}

func TestSaveReadWalletSignaturesSurvive(t *testing.T) {
	s := aeswrapper.New()
	testMessage := make([]byte, 1024)
	_, err := io.ReadFull(rand.Reader, testMessage)
	assert.Nil(t, err)

	key := make([]byte, 32)
	_, err = io.ReadFull(rand.Reader, key)
	assert.Nil(t, err)

	helper := New(Config{
		WalletPath:   filepath.Join(t.TempDir(), "test_wallet"),
		WalletPasswd: hex.EncodeToString(key),
	}, s)

	w0, err := wallet.New()
	assert.Nil(t, err)

	d0, s0 := w0.Sign(testMessage)

	err = helper.SaveWallet(w0)
	assert.Nil(t, err)
	w1, err := helper.ReadWallet()
	assert.Nil(t, err)

	d1, s1 := w1.Sign(testMessage)

	assert.Equal(t, d0, d1)
	assert.Equal(t, s0, s1)
}

func TestSaveAndReadPEM(t *testing.T) {
	h := New(Config{WalletPemPath: filepath.Join(t.TempDir(), "wallet")}, aeswrapper.New())
	w, err := wallet.New()
	assert.Nil(t, err)
	assert.NotNil(t, w.Private)
	assert.NotNil(t, w.Public)

	err = h.SaveToPem(&w)
	assert.Nil(t, err)

	nw, err := h.ReadFromPem()
	assert.Nil(t, err)
	assert.Equal(t, w.Private, nw.Private)
	assert.Equal(t, w.Public, nw.Public)
}

func TestReadWalletWrongPassword(t *testing.T) {
	s := aeswrapper.New()
	key := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, key)
	assert.Nil(t, err)

	path := filepath.Join(t.TempDir(), "test_wallet")
	helper := New(Config{WalletPath: path, WalletPasswd: hex.EncodeToString(key)}, s)

	w, err := wallet.New()
	assert.Nil(t, err)
	assert.Nil(t, helper.SaveWallet(w))

	other := make([]byte, 32)
	_, err = io.ReadFull(rand.Reader, other)
	assert.Nil(t, err)

	intruder := New(Config{WalletPath: path, WalletPasswd: hex.EncodeToString(other)}, s)
	_, err = intruder.ReadWallet()
	assert.NotNil(t, err)
}
