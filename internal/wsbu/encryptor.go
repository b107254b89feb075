package wsbu

import "io"

// Encryptor optionally encrypts backup archives at rest. Encryption uses
// a key pair: backups need no passphrase, restores unlock the private key.
type Encryptor interface {
	// IsConfigured reports whether key material exists. When false,
	// archives are stored in plaintext and Encrypt must not be called.
	IsConfigured() bool

	// Setup generates and stores a new key pair, protecting the private
	// key with the given passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with the passphrase and returns a
	// context that can decrypt archives.
	Unlock(passphrase string) (DecryptionContext, error)
}

// DecryptionContext holds an unlocked private key for the duration of
// one restore.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
