package eyamladd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// AgeCipher encrypts values to a set of age recipients and returns the
// ASCII-armored ciphertext.
type AgeCipher struct {
	recipients []age.Recipient
}

// NewAgeCipher creates an AgeCipher for the given recipients.
func NewAgeCipher(recipients ...age.Recipient) *AgeCipher {
	return &AgeCipher{recipients: recipients}
}

// LoadAgeCipher reads an age recipients file (one recipient per line,
// # comments allowed).
func LoadAgeCipher(path string) (*AgeCipher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recipients file: %w", err)
	}
	defer f.Close()

	recipients, err := age.ParseRecipients(f)
	if err != nil {
		return nil, fmt.Errorf("parse recipients file %s: %w", path, err)
	}
	return NewAgeCipher(recipients...), nil
}

// Encrypt encrypts plaintext to all configured recipients.
func (c *AgeCipher) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncryptionFailed, err)
	}
	if len(c.recipients) == 0 {
		return "", fmt.Errorf("%w: no recipients configured", ErrEncryptionFailed)
	}

	var buf bytes.Buffer
	aw := armor.NewWriter(&buf)
	w, err := age.Encrypt(aw, c.recipients...)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create encryptor: %w", ErrEncryptionFailed, err)
	}
	if _, err := w.Write([]byte(plaintext)); err != nil {
		return "", fmt.Errorf("%w: failed to write plaintext: %w", ErrEncryptionFailed, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to close encryptor: %w", ErrEncryptionFailed, err)
	}
	if err := aw.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to close armor: %w", ErrEncryptionFailed, err)
	}
	return buf.String(), nil
}
