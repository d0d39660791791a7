package eyamladd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONKeepsKeyOrder(t *testing.T) {
	m, err := ParseJSON([]byte(`{"zulu": "1", "alpha": {"mike": "2", "bravo": "3"}, "echo": "4"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"zulu", "alpha", "echo"}, m.Keys())

	alpha, ok := m.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"mike", "bravo"}, alpha.(*Mapping).Keys())
}

func TestParseJSONScalarTags(t *testing.T) {
	m, err := ParseJSON([]byte("{\n\t\"s\": \"yes\",\n\t\"i\": 42,\n\t\"f\": 1.50,\n\t\"b\": false,\n\t\"n\": null\n}"))
	require.NoError(t, err)

	tests := []struct {
		key  string
		text string
		tag  string
	}{
		{key: "s", text: "yes", tag: tagStr},
		{key: "i", text: "42", tag: tagInt},
		{key: "f", text: "1.50", tag: tagFloat},
		{key: "b", text: "false", tag: tagBool},
		{key: "n", text: "null", tag: tagNull},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := m.Get(tt.key)
			require.True(t, ok)
			s, ok := v.(*Scalar)
			require.True(t, ok, "got %T", v)
			assert.Equal(t, tt.text, s.Text)
			assert.Equal(t, tt.tag, s.Tag)
			assert.Equal(t, PlainStyle, s.Style)
		})
	}
}

func TestParseJSONEscapes(t *testing.T) {
	m, err := ParseJSON([]byte(`{"e":"\ud83d\ude00","s":"a\/b","c":"tab\there\u0000"}`))
	require.NoError(t, err)

	tests := map[string]string{
		"e": "😀",
		"s": "a/b",
		"c": "tab\there\x00",
	}
	for key, want := range tests {
		v, ok := m.Get(key)
		require.True(t, ok, "key %q", key)
		assert.Equal(t, want, v.(*Scalar).Text, "key %q", key)
	}
}

func TestParseJSONNumbersKeepLexicalForm(t *testing.T) {
	m, err := ParseJSON([]byte(`{"big": 123456789012345678901234567890, "neg": -0, "exp": 1E+400}`))
	require.NoError(t, err)

	for key, want := range map[string][2]string{
		"big": {"123456789012345678901234567890", tagInt},
		"neg": {"-0", tagInt},
		"exp": {"1E+400", tagFloat},
	} {
		v, _ := m.Get(key)
		s := v.(*Scalar)
		assert.Equal(t, want[0], s.Text, "key %q", key)
		assert.Equal(t, want[1], s.Tag, "key %q", key)
	}
}

func TestParseJSONEscapedValuesRoundTrip(t *testing.T) {
	m, err := ParseJSON([]byte(`{"k\/ey": {"list": ["\ud83d\ude00"]}}`))
	require.NoError(t, err)

	out, err := Marshal(m, MarshalOptions{})
	require.NoError(t, err)
	doc, err := ParseDocument(out)
	require.NoError(t, err)
	assert.Equal(t, DumpJSON(m), DumpJSON(doc.Root))
}

func TestParseJSONDuplicateKeysLastWins(t *testing.T) {
	m, err := ParseJSON([]byte(`{"a": "1", "b": "2", "a": "3"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	a, _ := m.Get("a")
	assert.Equal(t, "3", a.(*Scalar).Text)
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "truncated", input: `{"a": `, want: ErrInvalidJSON},
		{name: "trailing comma", input: `{"a": "b",}`, want: ErrInvalidJSON},
		{name: "yaml is not json", input: "a: b\n", want: ErrInvalidJSON},
		{name: "array", input: `["a", "b"]`, want: ErrInvalidInputShape},
		{name: "string", input: `"a"`, want: ErrInvalidInputShape},
		{name: "null", input: `null`, want: ErrInvalidInputShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseDocumentEmpty(t *testing.T) {
	for _, in := range []string{"", "\n", "# just a comment\n"} {
		doc, err := ParseDocument([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, 0, doc.Root.Len(), "input %q", in)
	}
}

func TestParseDocumentRejectsNonMapping(t *testing.T) {
	_, err := ParseDocument([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top-level YAML must be a mapping")
}

func TestParseDocumentSyntaxErrorShowsSource(t *testing.T) {
	_, err := ParseDocument([]byte("a: b\nc: [d\ne: f\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml:")
}

func TestParseDocumentFoldedBlockKeepsLineBreaks(t *testing.T) {
	doc, err := ParseDocument([]byte("secret: >\n  ENC[PKCS7,AAAA\n  BBBB]\nother: x\n"))
	require.NoError(t, err)

	v, _ := doc.Root.Get("secret")
	s := v.(*Scalar)
	assert.True(t, s.Folded())
	assert.Equal(t, "ENC[PKCS7,AAAA\a\nBBBB]\n", s.Text)
	assert.Equal(t, []string{"ENC[PKCS7,AAAA", "BBBB]"}, s.FoldedLines())
}

func TestParseDocumentFoldedBlockStripChomping(t *testing.T) {
	doc, err := ParseDocument([]byte("nested:\n  secret: >-\n    AAAA\n    BBBB\n"))
	require.NoError(t, err)

	nested, _ := doc.Root.Get("nested")
	v, _ := nested.(*Mapping).Get("secret")
	assert.Equal(t, "AAAA\a\nBBBB", v.(*Scalar).Text)
}

func TestParseDocumentFoldedBlockWithBlankLineFallsBack(t *testing.T) {
	doc, err := ParseDocument([]byte("secret: >\n  AAAA\n\n  BBBB\n"))
	require.NoError(t, err)

	v, _ := doc.Root.Get("secret")
	s := v.(*Scalar)
	assert.True(t, s.Folded())
	assert.Equal(t, "AAAA\nBBBB\n", s.Text)
}

func TestParseDocumentSet(t *testing.T) {
	doc, err := ParseDocument([]byte("roles: !!set\n  ? admin\n  ? dev\n"))
	require.NoError(t, err)

	v, _ := doc.Root.Get("roles")
	set, ok := v.(*Set)
	require.True(t, ok, "got %T", v)
	assert.Equal(t, []string{"admin", "dev"}, set.Members)
}

func TestParseDocumentExpandsAliases(t *testing.T) {
	doc, err := ParseDocument([]byte("base: &b\n  k: v\ncopy: *b\n"))
	require.NoError(t, err)

	v, _ := doc.Root.Get("copy")
	m, ok := v.(*Mapping)
	require.True(t, ok, "got %T", v)
	k, _ := m.Get("k")
	assert.Equal(t, "v", k.(*Scalar).Text)
}

func TestDetectIndent(t *testing.T) {
	assert.Equal(t, 2, detectIndent([]byte("a: 1\n")))
	assert.Equal(t, 4, detectIndent([]byte("a:\n    b: 1\n")))
	assert.Equal(t, 2, detectIndent([]byte("a:\n  b:\n    c: 1\n")))
}

func TestDetectIndentlessSequences(t *testing.T) {
	got := detectIndentlessSequences([]byte("list:\n- a\nother:\n  - b\ndoc:\n---\n"))
	assert.Equal(t, []indentlessInfo{{key: "list", indent: 0}}, got)
}

func TestHasDocumentStart(t *testing.T) {
	assert.True(t, hasDocumentStart([]byte("---\na: 1\n")))
	assert.True(t, hasDocumentStart([]byte("# header\n---\na: 1\n")))
	assert.False(t, hasDocumentStart([]byte("a: 1\n---\n")))
}
