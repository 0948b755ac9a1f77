package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// Cipher seals values under keys derived from a single master key and a scope.
// The scope is also bound as additional authenticated data, so a ciphertext
// copied to another scope fails to open.
type Cipher struct {
	master []byte
}

// NewCipher copies key and returns a Cipher. The key must be KeySize bytes.
func NewCipher(key []byte) (*Cipher, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	master := make([]byte, KeySize)
	copy(master, key)
	return &Cipher{master: master}, nil
}

// NewCipherFromString parses a base64 master key, see ParseKey.
func NewCipherFromString(encoded string) (*Cipher, error) {
	key, err := ParseKey(encoded)
	if err != nil {
		return nil, err
	}
	return NewCipher(key)
}

// Encrypt returns nonce + ciphertext + tag.
func (c *Cipher) Encrypt(scope string, data []byte) ([]byte, error) {
	aead, err := c.aead(scope)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aead.Seal(nonce, nonce, data, []byte(scope)), nil
}

// Decrypt reverses Encrypt for the same scope.
func (c *Cipher) Decrypt(scope string, ciphertext []byte) ([]byte, error) {
	aead, err := c.aead(scope)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize+aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, sealed, []byte(scope))
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// EncryptString encrypts plaintext and returns base64-encoded ciphertext.
func (c *Cipher) EncryptString(scope, plaintext string) (string, error) {
	ciphertext, err := c.Encrypt(scope, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString decrypts a base64-encoded ciphertext back to string.
func (c *Cipher) DecryptString(scope, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	plaintext, err := c.Decrypt(scope, raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (c *Cipher) aead(scope string) (cipher.AEAD, error) {
	if scope == "" {
		return nil, ErrMissingScope
	}

	key, err := deriveKey(c.master, scope)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
