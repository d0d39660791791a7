package eyamladd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eyamlBlock = `    ENC[PKCS7,MIIBeQYJKoZIhvcNAQcDoIIBajCCAWYCAQAxggEhMIIBHQIBADAFMAACAQEw
    DQYJKoZIhvcNAQEBBQAEggEAqcl1NXkwXvasks+WFoWfKjydHk9WuA/NI97u
    of6Gi61pvf6i2ZO45hqUSQVn0Lbz3nH7Juv3kcXGFZlrvi5/UK1jcT7gqOlb
    EWLS+zXFmf26Ou9j4shXiMQPpvPFeqV9X8t+gO84lzJFTgovzgkLNeCD1tIx
    EMqDO8zYXxzXPXT21L2e79XL+qiVWtjsPe2q6TPDJN4BD+lq1laki8CZa5cE
    wNBlWjPtlUVUk8ptSM9xaZMK5q9NRrJ/0uGIeBUAGdM2Po5BfNpfc9YyHFeH
    xbvzUmgkQYVXuvWp0XSM9vRPBZWQtnmqwh2VA22+CgD+mE3drmohraX3hCC1
    UdC6wDA8BgkqhkiG9w0BBwEwHQYJYIZIAWUDBAEqBBD39+PUE1rNQN3rtk9l
    589EgBBFMsMP2N1a4alw3UvIDYRu]
`

func TestFormatBlockEyamlOutput(t *testing.T) {
	want := "ENC[PKCS7,MIIBeQYJKoZIhvcNAQcDoIIBajCCAWYCAQAxggEhMIIBHQIBADAFMAACAQEw\u0007\n" +
		"DQYJKoZIhvcNAQEBBQAEggEAqcl1NXkwXvasks+WFoWfKjydHk9WuA/NI97u\u0007\n" +
		"of6Gi61pvf6i2ZO45hqUSQVn0Lbz3nH7Juv3kcXGFZlrvi5/UK1jcT7gqOlb\u0007\n" +
		"EWLS+zXFmf26Ou9j4shXiMQPpvPFeqV9X8t+gO84lzJFTgovzgkLNeCD1tIx\u0007\n" +
		"EMqDO8zYXxzXPXT21L2e79XL+qiVWtjsPe2q6TPDJN4BD+lq1laki8CZa5cE\u0007\n" +
		"wNBlWjPtlUVUk8ptSM9xaZMK5q9NRrJ/0uGIeBUAGdM2Po5BfNpfc9YyHFeH\u0007\n" +
		"xbvzUmgkQYVXuvWp0XSM9vRPBZWQtnmqwh2VA22+CgD+mE3drmohraX3hCC1\u0007\n" +
		"UdC6wDA8BgkqhkiG9w0BBwEwHQYJYIZIAWUDBAEqBBD39+PUE1rNQN3rtk9l\u0007\n" +
		"589EgBBFMsMP2N1a4alw3UvIDYRu]\n"

	got := FormatBlock(eyamlBlock)
	assert.Equal(t, want, got.Text)
	assert.Equal(t, FoldedStyle, got.Style)
	assert.True(t, got.Folded())
}

func TestFormatBlockTrimsEachLine(t *testing.T) {
	got := FormatBlock("AAAA \n BBBB\n")
	assert.Equal(t, "AAAA\a\nBBBB\n", got.Text)
}

func TestFormatBlockAlwaysEndsWithSingleNewline(t *testing.T) {
	for _, raw := range []string{"AAAA\nBBBB", "AAAA\nBBBB\n", "  AAAA  \r\n  BBBB  \r\n", "AAAA"} {
		got := FormatBlock(raw).Text
		require.True(t, strings.HasSuffix(got, "\n"), "raw %q", raw)
		require.False(t, strings.HasSuffix(got, "\n\n"), "raw %q", raw)
	}
}

func TestFormatBlockSplitsBackIntoTrimmedLines(t *testing.T) {
	raw := "  one\n\ttwo  \n three \r\nfour"
	got := FormatBlock(raw)
	assert.Equal(t, []string{"one", "two", "three", "four"}, got.FoldedLines())
	assert.Equal(t, 3, strings.Count(got.Text, string(FoldMarker)))
}

func TestFormatBlockEmptyInput(t *testing.T) {
	got := FormatBlock("")
	assert.Equal(t, "\n", got.Text)
	assert.Empty(t, got.FoldedLines())
}

func TestFoldedValueIsWhatReadersSee(t *testing.T) {
	assert.Equal(t, "AAAA BBBB\n", foldedValue("AAAA\a\nBBBB\n"))
}
