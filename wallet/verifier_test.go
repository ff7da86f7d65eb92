package wallet

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func generateRandom(bytesNum int) []byte {
	b := make([]byte, 0, bytesNum)
	for i := 0; i < bytesNum; i++ {
		b = append(b, byte(rand.Intn(256)))
	}
	return b
}

func TestAddressVerifySuccess(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)
	assert.NotNil(t, w.Private)
	assert.NotNil(t, w.Public)

	addr := w.Address()
	assert.NotEmpty(t, addr)

	payload := signedPayload(t)

	hash, sig := w.Sign(payload)
	assert.NotEmpty(t, hash)
	assert.NotEmpty(t, sig)

	err = Helper{}.Verify(payload, sig, hash, addr)
	assert.Nil(t, err)
}

func TestAddressVerifyFailsForForeignAddress(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)
	assert.NotNil(t, w.Private)
	assert.NotNil(t, w.Public)

	payload := signedPayload(t)

	hash, sig := w.Sign(payload)
	assert.NotEmpty(t, hash)
	assert.NotEmpty(t, sig)

	nw, err := New()
	assert.Nil(t, err)
	addr := nw.Address()
	assert.NotEmpty(t, addr)

	err = Helper{}.Verify(payload, sig, hash, addr)
	assert.NotNil(t, err)
}

func BenchmarkAddressVerifyLargeMessage(b *testing.B) {
	w, err := New()
	assert.Nil(b, err)

	payload := generateRandom(1000000)
	addr := w.Address()

	for n := 0; n < b.N; n++ {
		hash, sig := w.Sign(payload)
		err = Helper{}.Verify(payload, sig, hash, addr)
		assert.Nil(b, err)
	}
}
