// Package secrets encrypts values at rest with AES-256-GCM.
//
// A Cipher holds one 32-byte master key. Every operation takes a scope (for
// example the owner of a two-factor record); HKDF-SHA256 derives a distinct key
// per scope and the scope is authenticated alongside the ciphertext.
//
//	c, err := secrets.NewCipherFromString(os.Getenv("TWOFACTOR_ENCRYPTION_KEY"))
//	if err != nil {
//	    // handle error
//	}
//	sealed, _ := c.Encrypt("user:42", []byte("KS72XBTN5PEBGX2I"))
//	plain, _ := c.Decrypt("user:42", sealed)
//
// Ciphertexts are laid out as nonce + sealed data + tag. Errors wrap the
// package sentinels such as ErrDecryptionFailed; match them with errors.Is.
package secrets
