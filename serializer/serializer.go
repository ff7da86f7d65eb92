// Package serializer holds the base58 codec behind wallet addresses.
package serializer

import "github.com/mr-tron/base58"

// Base58Encode encodes the byte array to a base58 byte slice.
func Base58Encode(input []byte) []byte {
	return []byte(base58.Encode(input))
}

// Base58Decode decodes the base58 byte slice back to the raw bytes.
func Base58Decode(input []byte) ([]byte, error) {
	return base58.Decode(string(input))
}
