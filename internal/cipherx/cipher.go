// Package cipherx implements the client-side symmetric cipher used to
// protect message bodies with a line's shared secret.
//
// The keystream is the 4 little-endian bytes of the 32-bit secret, cycled
// over the payload. It is a placeholder cipher: symmetric and reversible,
// but not authenticated and not semantically secure. The server never
// imports this package; it only ever stores opaque ciphertext.
package cipherx

import "encoding/binary"

// Encrypt XORs plaintext against the keystream derived from secret.
func Encrypt(secret uint32, plaintext []byte) []byte {
	var key [4]byte
	binary.LittleEndian.PutUint32(key[:], secret)

	out := make([]byte, len(plaintext))
	for i, b := range plaintext {
		out[i] = b ^ key[i%4]
	}
	return out
}

// Decrypt reverses Encrypt. XOR is an involution, so the two are identical.
func Decrypt(secret uint32, ciphertext []byte) []byte {
	return Encrypt(secret, ciphertext)
}
