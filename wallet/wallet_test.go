package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openvasp/openvasp-host/message"
)

// signedPayload is a wire payload the relay would sign before publishing.
func signedPayload(t testing.TB) []byte {
	m := message.NewTermination(
		"sess-wallet-test",
		message.SessionClosedTransferOccured,
		message.VaspInformation{Name: "Originator VASP", ID: "aa0000ff12345678"},
	)
	payload, err := message.Encode(m)
	assert.Nil(t, err)
	return []byte(payload)
}

func TestCreateWallet(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)
	assert.NotNil(t, w.Private)
	assert.NotNil(t, w.Public)
}

func TestGobEncodingDecoding(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)
	assert.NotNil(t, w.Private)
	assert.NotNil(t, w.Public)

	b, err := w.EncodeGOB()
	assert.Nil(t, err)
	assert.NotNil(t, b)

	nw, err := DecodeGOBWallet(b)
	assert.Nil(t, err)
	assert.Equal(t, nw.Private, w.Private)
	assert.Equal(t, nw.Public, w.Public)
}

func TestSignVerifySuccess(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)
	assert.NotNil(t, w.Private)
	assert.NotNil(t, w.Public)

	payload := signedPayload(t)

	hash, sig := w.Sign(payload)
	assert.NotNil(t, hash)
	assert.NotNil(t, sig)

	ok := w.Verify(payload, sig, hash)
	assert.True(t, ok)
}

func TestSignVerifyFailsForForeignKey(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)
	assert.NotNil(t, w.Private)
	assert.NotNil(t, w.Public)

	payload := signedPayload(t)

	nw, err := New()
	assert.Nil(t, err)
	hash, sig := nw.Sign(payload)
	assert.NotNil(t, hash)
	assert.NotNil(t, sig)

	ok := w.Verify(payload, sig, hash)
	assert.False(t, ok)
}

func BenchmarkVerifyLargeMessage(b *testing.B) {
	w, err := New()
	assert.Nil(b, err)

	payload := generateRandom(1000000)

	for n := 0; n < b.N; n++ {
		hash, sig := w.Sign(payload)
		ok := w.Verify(payload, sig, hash)
		assert.True(b, ok)
	}
}
