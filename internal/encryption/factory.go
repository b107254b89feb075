package encryption

import (
	"fmt"

	"wsbu-go/internal/config"
	"wsbu-go/internal/wsbu"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Type "none" (the default) returns nil: archives are stored in
// plaintext and the engine skips the encryption step entirely.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (wsbu.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		if cfg.RecipientPath == "" || cfg.IdentityPath == "" {
			return nil, fmt.Errorf("age encryption requires recipient_path and identity_path")
		}
		return NewAgeEncryptor(cfg.RecipientPath, cfg.IdentityPath), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
