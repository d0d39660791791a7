package eyamladd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	gyaml "github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
	"gopkg.in/yaml.v3"
)

// Document is a parsed (e)yaml document together with the formatting hints
// captured at parse time.
type Document struct {
	Root *Mapping
	meta docMeta
	Comments
}

// docMeta holds formatting hints captured at parse time.
type docMeta struct {
	indent        int
	finalNewline  bool
	explicitStart bool
	indentless    []indentlessInfo
	commentSpaces map[string]int
}

type indentlessInfo struct {
	key    string
	indent int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Root: NewMapping(), meta: docMeta{indent: 2, finalNewline: true}}
}

// ParseJSON decodes clear-text JSON into a tree. Object key order and the
// lexical form of numbers are preserved; a duplicated key keeps its first
// position and its last value. The top level must be an object.
func ParseJSON(data []byte) (*Mapping, error) {
	if !json.Valid(data) {
		var raw json.RawMessage
		err := json.Unmarshal(data, &raw)
		if err == nil {
			err = errors.New("malformed document")
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidInputShape, jsonKindName(tok))
	}
	m, err := decodeJSONObject(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return m, nil
}

func decodeJSONObject(dec *json.Decoder) (*Mapping, error) {
	m := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		if e := m.entry(key); e != nil {
			e.Value = v
			continue
		}
		m.Entries = append(m.Entries, &Entry{Key: key, KeyTag: tagStr, Value: v})
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeJSONArray(dec *json.Decoder) (*Sequence, error) {
	s := &Sequence{Items: []Value{}}
	for dec.More() {
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return nil, fmt.Errorf("unexpected %q", rune(t))
		}
	case string:
		return NewString(t), nil
	case json.Number:
		return &Scalar{Text: t.String(), Tag: numberTag(t.String())}, nil
	case bool:
		return &Scalar{Text: strconv.FormatBool(t), Tag: tagBool}, nil
	case nil:
		return &Scalar{Text: "null", Tag: tagNull}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func numberTag(lexical string) string {
	if strings.ContainsAny(lexical, ".eE") {
		return tagFloat
	}
	return tagInt
}

func jsonKindName(tok json.Token) string {
	switch tok {
	case json.Delim('['):
		return SequenceKind.String()
	case json.Delim('{'):
		return MappingKind.String()
	default:
		return ScalarKind.String()
	}
}

// ParseDocument reads YAML data into a Document. Empty data yields an empty
// mapping. The top level must be a mapping.
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{meta: captureMeta(data)}
	if len(bytes.TrimSpace(data)) == 0 {
		doc.Root = NewMapping()
		return doc, nil
	}

	var n yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(false)
	if err := dec.Decode(&n); err != nil {
		if errors.Is(err, io.EOF) {
			doc.Root = NewMapping()
			return doc, nil
		}
		return nil, describeYAMLError(data, err)
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 0 {
		doc.Root = NewMapping()
		doc.Comments = nodeComments(&n)
		return doc, nil
	}
	if n.Kind != yaml.DocumentNode || n.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("top-level YAML must be a mapping")
	}
	doc.Comments = nodeComments(&n)
	lines := bytes.Split(data, []byte("\n"))
	root, ok := convertNode(n.Content[0], lines).(*Mapping)
	if !ok {
		return nil, errors.New("top-level YAML must be a mapping")
	}
	doc.Root = root
	return doc, nil
}

// describeYAMLError re-parses data with goccy/go-yaml to obtain a
// diagnostic that points at the offending source line.
func describeYAMLError(data []byte, err error) error {
	if _, perr := parser.ParseBytes(data, 0); perr != nil {
		return fmt.Errorf("%w\n%s", err, gyaml.FormatError(perr, false, true))
	}
	return err
}

func captureMeta(data []byte) docMeta {
	return docMeta{
		indent:        detectIndent(data),
		finalNewline:  len(data) == 0 || bytes.HasSuffix(data, []byte("\n")),
		explicitStart: hasDocumentStart(data),
		indentless:    detectIndentlessSequences(data),
		commentSpaces: captureCommentSpacing(data),
	}
}

// convertNode turns a yaml node into a tree value. lines holds the source
// document, used to recover the fold points of folded block scalars; it may
// be nil.
func convertNode(n *yaml.Node, lines [][]byte) Value {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewMapping()
		}
		return convertNode(n.Content[0], lines)

	case yaml.AliasNode:
		// Aliases are expanded; anchors are not kept.
		return convertNode(n.Alias, lines)

	case yaml.MappingNode:
		if n.Tag == tagSet {
			set := &Set{Comments: nodeComments(n)}
			for i := 0; i+1 < len(n.Content); i += 2 {
				set.Add(n.Content[i].Value)
			}
			return set
		}
		m := &Mapping{Comments: nodeComments(n), Flow: n.Style&yaml.FlowStyle != 0 && len(n.Content) > 0}
		if n.Tag != tagMap {
			m.Tag = n.Tag
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind == yaml.AliasNode && k.Alias != nil {
				k = k.Alias
			}
			val := convertNode(v, lines)
			if e := m.entry(k.Value); e != nil {
				e.Value = val
				continue
			}
			m.Entries = append(m.Entries, &Entry{
				Key:         k.Value,
				KeyTag:      k.Tag,
				KeyStyle:    fromNodeStyle(k.Style),
				Value:       val,
				KeyComments: nodeComments(k),
			})
		}
		return m

	case yaml.SequenceNode:
		s := &Sequence{Comments: nodeComments(n), Flow: n.Style&yaml.FlowStyle != 0 && len(n.Content) > 0}
		if n.Tag != tagSeq {
			s.Tag = n.Tag
		}
		s.Items = make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			s.Items = append(s.Items, convertNode(c, lines))
		}
		return s

	default:
		s := &Scalar{Text: n.Value, Tag: n.Tag, Style: fromNodeStyle(n.Style), Comments: nodeComments(n)}
		if s.Style == FoldedStyle && lines != nil {
			if text, ok := captureFoldedText(n, lines); ok {
				s.Text = text
			}
		}
		return s
	}
}

// captureFoldedText recovers the fold points of a folded block scalar from
// the source lines so the block keeps its line breaks when written back.
// Only blocks with clip or strip chomping and no blank or more-indented
// lines are recovered; the result is checked against the decoded value.
func captureFoldedText(n *yaml.Node, lines [][]byte) (string, bool) {
	lineIdx := n.Line - 1
	if lineIdx < 0 || lineIdx+1 >= len(lines) {
		return "", false
	}
	header := string(bytes.TrimRight(lines[lineIdx], "\r"))
	if n.Column-1 < 0 || n.Column-1 >= len(header) {
		return "", false
	}
	indicator := strings.TrimSpace(header[n.Column-1:])
	if i := strings.Index(indicator, "#"); i >= 0 {
		indicator = strings.TrimSpace(indicator[:i])
	}
	var strip bool
	switch indicator {
	case ">":
	case ">-":
		strip = true
	default:
		return "", false
	}

	contentIndent := leadingSpaces(lines[lineIdx+1])
	if contentIndent <= leadingSpaces([]byte(header)) {
		return "", false
	}
	var collected []string
	for i := lineIdx + 1; i < len(lines); i++ {
		l := bytes.TrimRight(lines[i], "\r")
		if len(bytes.TrimSpace(l)) == 0 {
			break
		}
		if leadingSpaces(l) < contentIndent {
			break
		}
		if leadingSpaces(l) > contentIndent {
			return "", false
		}
		collected = append(collected, strings.TrimRight(string(l[contentIndent:]), " \t"))
	}
	if len(collected) == 0 {
		return "", false
	}
	text := strings.Join(collected, foldSep)
	if !strip {
		text += "\n"
	}
	if foldedValue(text) != n.Value {
		return "", false
	}
	return text, true
}

func nodeComments(n *yaml.Node) Comments {
	return Comments{Head: n.HeadComment, Line: n.LineComment, Foot: n.FootComment}
}

func fromNodeStyle(s yaml.Style) Style {
	switch {
	case s&yaml.DoubleQuotedStyle != 0:
		return DoubleQuotedStyle
	case s&yaml.SingleQuotedStyle != 0:
		return SingleQuotedStyle
	case s&yaml.LiteralStyle != 0:
		return LiteralStyle
	case s&yaml.FoldedStyle != 0:
		return FoldedStyle
	default:
		return PlainStyle
	}
}

func hasDocumentStart(data []byte) bool {
	for _, l := range bytes.Split(data, []byte("\n")) {
		t := bytes.TrimSpace(l)
		if len(t) == 0 || t[0] == '#' || t[0] == '%' {
			continue
		}
		return bytes.Equal(t, []byte("---")) || bytes.HasPrefix(t, []byte("--- "))
	}
	return false
}

func detectIndentlessSequences(data []byte) []indentlessInfo {
	lines := bytes.Split(data, []byte("\n"))
	var out []indentlessInfo
	for i := 0; i+1 < len(lines); i++ {
		line := lines[i]
		next := lines[i+1]
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[len(trimmed)-1] != ':' {
			continue
		}
		key := strings.TrimSuffix(string(trimmed), ":")
		indent := leadingSpaces(line)
		nextIndent := leadingSpaces(next)
		if nextIndent != indent {
			continue
		}
		nextTrimmed := bytes.TrimSpace(next)
		if bytes.HasPrefix(nextTrimmed, []byte{'-'}) && !bytes.HasPrefix(nextTrimmed, []byte("---")) {
			out = append(out, indentlessInfo{key: key, indent: indent})
		}
	}
	return out
}

func captureCommentSpacing(data []byte) map[string]int {
	lines := bytes.Split(data, []byte("\n"))
	out := make(map[string]int)
	for _, l := range lines {
		idx := bytes.IndexByte(l, '#')
		if idx <= 0 {
			continue
		}
		spaces := 0
		for j := idx - 1; j >= 0 && l[j] == ' '; j-- {
			spaces++
		}
		if spaces == 0 {
			continue
		}
		out[string(l[idx:])] = spaces
	}
	return out
}

// detectIndent returns the minimal positive indentation observed in the data.
func detectIndent(data []byte) int {
	lines := bytes.Split(data, []byte("\n"))
	indent := 0
	for _, l := range lines {
		if len(l) == 0 {
			continue
		}
		c := leadingSpaces(l)
		if c == 0 {
			continue
		}
		if indent == 0 || c < indent {
			indent = c
		}
	}
	if indent == 0 {
		indent = 2
	}
	return indent
}

// leadingSpaces counts leading space characters.
func leadingSpaces(line []byte) int {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
