// Package cli implements the eyamladd command line.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/yamledit/eyamladd"
)

// EnvPrefix is the prefix of environment variables overriding flags.
const EnvPrefix = "EYAMLADD"

const (
	flagVerbose       = "verbose"
	flagPublicKey     = "eyaml-public-key"
	flagDocumentStart = "with-document-start"
	flagFilename      = "filename"
	flagWrite         = "write"
	flagStdin         = "stdin"
	flagJSONFile      = "json-file"
	flagEyamlBin      = "eyaml-bin"
	flagCipher        = "cipher"

	cipherEyaml = "eyaml"
	cipherAge   = "age"
)

const rootLong = `Encrypt all leaf values of a JSON document with eyaml and merge the
encrypted data into a yaml/eyaml file.

Every scalar of the clear-text input is encrypted with the PKCS7 public key
and rendered as a folded block. Mappings are merged recursively into the
target file, lists are appended to and scalars are replaced.`

const rootExample = `  # Encrypt a JSON file and print the merged document
  eyamladd -k keys/public_key.pkcs7.pem -j secrets.json -f common.eyaml

  # Read from stdin and update the file in place
  echo '{"db": {"password": "hunter2"}}' | eyamladd -k public_key.pkcs7.pem -f common.eyaml -w -`

// UsageError marks invalid invocations.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

type options struct {
	verbose       bool
	publicKey     string
	documentStart bool
	filename      string
	write         bool
	stdin         bool
	jsonFile      string
	eyamlBin      string
	cipher        string
}

// NewRootCmd creates the eyamladd command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eyamladd [-]",
		Short:         "Encrypt JSON data with eyaml and merge it into a yaml file",
		Long:          rootLong,
		Example:       rootExample,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	// flag setup only fails on programming errors
	if err := addFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	v, err := newConfig(cmd.Flags())
	if err != nil {
		panic(err)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions(v, args)
		if err != nil {
			return err
		}
		return run(cmd, opts)
	}

	return cmd
}

func addFlags(flags *pflag.FlagSet) error {
	flags.BoolP(flagVerbose, "v", false, "enable debug logging")
	flags.StringP(flagPublicKey, "k", "", "eyaml public key (PKCS7), or age recipients file with --cipher=age")
	flags.BoolP(flagDocumentStart, "s", false, "add document start indicator (---)")
	flags.StringP(flagFilename, "f", "", "(e)yaml file to merge eyaml data into")
	flags.BoolP(flagWrite, "w", false, "update file instead of printing to stdout")
	flags.Bool(flagStdin, false, "read clear text data from stdin (same as a bare -)")
	flags.StringP(flagJSONFile, "j", "", "read clear text data from json file")
	flags.String(flagEyamlBin, eyamladd.DefaultEyamlBin, "eyaml executable")
	flags.String(flagCipher, cipherEyaml, "encryption backend: eyaml or age")

	if err := flags.SetAnnotation(flagPublicKey, cobra.BashCompFilenameExt, []string{"pem", "txt"}); err != nil {
		return fmt.Errorf("annotate --%s: %w", flagPublicKey, err)
	}
	if err := flags.SetAnnotation(flagJSONFile, cobra.BashCompFilenameExt, []string{"json"}); err != nil {
		return fmt.Errorf("annotate --%s: %w", flagJSONFile, err)
	}
	return nil
}

// newConfig binds flags to a viper instance that also reads EYAMLADD_*
// environment variables.
func newConfig(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

func resolveOptions(v *viper.Viper, args []string) (options, error) {
	opts := options{
		verbose:       v.GetBool(flagVerbose),
		publicKey:     v.GetString(flagPublicKey),
		documentStart: v.GetBool(flagDocumentStart),
		filename:      v.GetString(flagFilename),
		write:         v.GetBool(flagWrite),
		stdin:         v.GetBool(flagStdin),
		jsonFile:      v.GetString(flagJSONFile),
		eyamlBin:      v.GetString(flagEyamlBin),
		cipher:        v.GetString(flagCipher),
	}
	if len(args) == 1 {
		if args[0] != "-" {
			return opts, usageErrorf("unexpected argument %q", args[0])
		}
		opts.stdin = true
	}
	if opts.stdin && opts.jsonFile != "" {
		return opts, usageErrorf("--%s and --%s are mutually exclusive", flagStdin, flagJSONFile)
	}
	if opts.publicKey == "" {
		return opts, usageErrorf("required flag --%s not set", flagPublicKey)
	}
	if opts.write && opts.filename == "" {
		return opts, usageErrorf("--%s requires --%s", flagWrite, flagFilename)
	}
	switch opts.cipher {
	case cipherEyaml, cipherAge:
	default:
		return opts, usageErrorf("unknown cipher %q (want %s or %s)", opts.cipher, cipherEyaml, cipherAge)
	}
	return opts, nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

func run(cmd *cobra.Command, opts options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := newLogger(cmd.ErrOrStderr(), opts.verbose)
	log.Debugf("Eyaml public key: %s", opts.publicKey)

	c, err := newCipher(opts, log)
	if err != nil {
		return err
	}

	input, err := readInput(cmd, opts, log)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(input)) == 0 {
		return fmt.Errorf("%w: input is empty", eyamladd.ErrInputSourceMissing)
	}
	cleartext, err := eyamladd.ParseJSON(input)
	if err != nil {
		return err
	}

	doc := eyamladd.NewDocument()
	if opts.filename != "" {
		log.Debugf("Input file: %s", opts.filename)
		doc, err = eyamladd.LoadDocumentFile(opts.filename)
		if err != nil {
			return err
		}
	}

	encrypted, err := eyamladd.EncryptLeaves(ctx, cleartext, c)
	if err != nil {
		return err
	}
	log.Debugf("In data encrypted:\n%s", eyamladd.DumpJSON(encrypted))
	if doc.Root.Len() > 0 {
		log.Debugf("Original content:\n%s", eyamladd.DumpJSON(doc.Root))
	}

	if err := eyamladd.Merge(doc.Root, encrypted); err != nil {
		return err
	}

	out, err := doc.Marshal(eyamladd.MarshalOptions{DocumentStart: opts.documentStart})
	if err != nil {
		return err
	}

	if opts.write {
		log.WithField("file", opts.filename).Infof("Writing changes to '%s'", opts.filename)
		return eyamladd.WriteFileAtomic(opts.filename, out)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func newCipher(opts options, log logrus.FieldLogger) (eyamladd.Cipher, error) {
	if opts.cipher == cipherAge {
		return eyamladd.LoadAgeCipher(opts.publicKey)
	}
	return eyamladd.NewEyamlCipher(opts.eyamlBin, opts.publicKey, log), nil
}

func readInput(cmd *cobra.Command, opts options, log logrus.FieldLogger) ([]byte, error) {
	switch {
	case opts.stdin:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			log.Info("Reading clear text JSON from the terminal, finish with Ctrl-D")
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	case opts.jsonFile != "":
		data, err := os.ReadFile(opts.jsonFile)
		if err != nil {
			return nil, fmt.Errorf("read json file: %w", err)
		}
		return data, nil
	default:
		return nil, eyamladd.ErrInputSourceMissing
	}
}

// Execute runs cmd with ctx.
func Execute(ctx context.Context, cmd *cobra.Command) error {
	return cmd.ExecuteContext(ctx)
}

// ExitCode maps an execution error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// PrintError writes err as a diagnostic to w.
func PrintError(w io.Writer, err error) {
	_, _ = color.New(color.FgRed).Fprintf(w, "✗ %v\n", err)
}
