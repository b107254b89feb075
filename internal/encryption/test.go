package encryption

import (
	"fmt"
	"io"

	"wsbu-go/internal/wsbu"
)

// TestEncryptor is a trivial Encryptor for tests: "encryption" prepends
// a fixed header, and Unlock only accepts the passphrase "test".
type TestEncryptor struct{}

const testHeader = "WSBU-TEST-ENC\n"

var (
	_ wsbu.Encryptor         = (*TestEncryptor)(nil)
	_ wsbu.DecryptionContext = (*TestEncryptor)(nil)
)

func NewTestEncryptor() *TestEncryptor { return &TestEncryptor{} }

func (*TestEncryptor) IsConfigured() bool { return true }

func (*TestEncryptor) Setup(string) error { return nil }

func (*TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.WriteString(w, testHeader); err != nil {
		return err
	}
	_, err := io.Copy(w, r)
	return err
}

func (e *TestEncryptor) Unlock(passphrase string) (wsbu.DecryptionContext, error) {
	if passphrase != "test" {
		return nil, fmt.Errorf("wrong passphrase")
	}
	return e, nil
}

func (*TestEncryptor) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if string(header) != testHeader {
		return fmt.Errorf("not test-encrypted data")
	}
	_, err := io.Copy(w, r)
	return err
}
