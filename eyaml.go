package eyamladd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultEyamlBin is the eyaml executable looked up in PATH.
const DefaultEyamlBin = "eyaml"

// EyamlCipher encrypts values by running `eyaml encrypt` with a PKCS7 public key.
type EyamlCipher struct {
	Bin       string
	PublicKey string
	Log       logrus.FieldLogger
}

// NewEyamlCipher returns a cipher for the public key at path.
func NewEyamlCipher(bin, publicKey string, log logrus.FieldLogger) *EyamlCipher {
	if bin == "" {
		bin = DefaultEyamlBin
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EyamlCipher{Bin: bin, PublicKey: publicKey, Log: log}
}

func (c *EyamlCipher) args(plaintext string) []string {
	return []string{
		"encrypt",
		"--string", plaintext,
		"--pkcs7-public-key", c.PublicKey,
		"--output", "block",
	}
}

// Encrypt runs eyaml and returns its standard output.
func (c *EyamlCipher) Encrypt(ctx context.Context, plaintext string) (string, error) {
	bin := c.Bin
	if bin == "" {
		bin = DefaultEyamlBin
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, c.args(plaintext)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = "no output on stderr"
			}
			return "", fmt.Errorf("%w: %s exited with code %d: %s", ErrEncryptionFailed, bin, exitErr.ExitCode(), msg)
		}
		return "", fmt.Errorf("%w: running %s: %w", ErrEncryptionFailed, bin, err)
	}

	if c.Log != nil {
		c.Log.WithField("cipher", "eyaml").Debugf("Eyaml command output:\n%s", stdout.String())
	}
	return stdout.String(), nil
}
