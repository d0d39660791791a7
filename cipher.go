package eyamladd

import (
	"context"
	"errors"
	"fmt"
)

// Cipher encrypts a single plaintext value and returns the raw ciphertext
// block as printed by the backend.
type Cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
}

// CipherFunc adapts a function to the Cipher interface.
type CipherFunc func(ctx context.Context, plaintext string) (string, error)

func (f CipherFunc) Encrypt(ctx context.Context, plaintext string) (string, error) {
	return f(ctx, plaintext)
}

// EncryptLeaf encrypts value with c and formats the ciphertext as a folded
// block scalar. Failures always match ErrEncryptionFailed.
func EncryptLeaf(ctx context.Context, c Cipher, value string) (*Scalar, error) {
	raw, err := c.Encrypt(ctx, value)
	if err != nil {
		if errors.Is(err, ErrEncryptionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrEncryptionFailed, err)
	}
	return FormatBlock(raw), nil
}
