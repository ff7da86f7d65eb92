// Package aeswrapper seals the node wallet file with AES-GCM.
package aeswrapper

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

var (
	ErrInvalidKeyLength   = errors.New("invalid key length, must be 16 or 32 bytes")
	ErrCipherFailure      = errors.New("cipher creation failure")
	ErrGCMFailure         = errors.New("gcm creation failure")
	ErrRandomNonceFailure = errors.New("random nonce creation failure")
	ErrOpenDataFailure    = errors.New("open data failure, cannot decrypt data")
)

const nonceSize = 12

// Helper wraps AES encryption and decryption.
// Uses Galois Counter Mode (GCM) for encryption and decryption.
type Helper struct{}

// New creates a new Helper.
func New() Helper {
	return Helper{}
}

// Encrypt encrypts data with key.
func (h Helper) Encrypt(key, data []byte) ([]byte, error) {
	if len(key) != 32 && len(key) != 16 {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrCipherFailure, err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrRandomNonceFailure, err)
	}

	aesGcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrGCMFailure, err)
	}

	return aesGcm.Seal(nonce, nonce, data, nil), nil
}

// Decrypt decrypts data with key.
func (h Helper) Decrypt(key, data []byte) ([]byte, error) {
	if len(key) != 32 && len(key) != 16 {
		return nil, ErrInvalidKeyLength
	}
	if len(data) < nonceSize {
		return nil, ErrOpenDataFailure
	}
	nonce, cipherText := data[:nonceSize], data[nonceSize:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrCipherFailure, err)
	}

	aesGcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrGCMFailure, err)
	}

	plaintext, err := aesGcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, errors.Join(ErrOpenDataFailure, err)
	}
	return plaintext, nil
}
