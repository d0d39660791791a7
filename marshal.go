package eyamladd

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalOptions control document serialization.
type MarshalOptions struct {
	// DocumentStart prepends the explicit document start marker (---).
	DocumentStart bool
}

// Marshal encodes the document, restoring the indentation, indentless
// sequences, comment spacing and final newline of the parsed source.
// Folded scalars render as ">" blocks with one source line per fold.
func (d *Document) Marshal(opts MarshalOptions) ([]byte, error) {
	if d == nil || d.Root == nil {
		return nil, errors.New("nil document")
	}
	meta := d.meta
	if meta.indent == 0 {
		meta.indent = 2
	}

	prefix, err := placeholderPrefix()
	if err != nil {
		return nil, err
	}
	enc := newNodeEncoder(prefix)
	root := enc.encode(d.Root)
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	setNodeComments(doc, d.Comments)

	out, err := encodeNode(doc, meta.indent)
	if err != nil {
		return nil, err
	}
	if len(enc.folded) > 0 {
		out, err = expandFolded(out, enc.folded, meta.indent)
		if err != nil {
			return nil, err
		}
	}
	if len(meta.indentless) > 0 {
		out = restoreIndentlessSequences(out, meta.indent, meta.indentless)
	}
	if len(meta.commentSpaces) > 0 {
		out = applyCommentSpacing(out, meta.commentSpaces)
	}
	if !meta.finalNewline {
		out = bytes.TrimSuffix(out, []byte("\n"))
	}
	if opts.DocumentStart || meta.explicitStart {
		out = append([]byte("---\n"), out...)
	}
	return out, nil
}

// Marshal encodes a tree as a YAML document with default formatting.
func Marshal(m *Mapping, opts MarshalOptions) ([]byte, error) {
	doc := NewDocument()
	doc.Root = m
	return doc.Marshal(opts)
}

func placeholderPrefix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate placeholder: %w", err)
	}
	return "eyamladd-folded-" + hex.EncodeToString(b[:]), nil
}

// expandFolded replaces every folded placeholder emitted by yaml.v3 with a
// ">" block header followed by the folded lines. The block body is indented
// one level deeper than the key (or sequence dash) that owns the value.
func expandFolded(data []byte, folded map[string]*Scalar, indent int) ([]byte, error) {
	lines := strings.SplitAfter(string(data), "\n")
	var sb strings.Builder
	found := 0
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		id, before, after, ok := findPlaceholder(body, folded)
		if !ok {
			sb.WriteString(line)
			continue
		}
		found++
		s := folded[id]
		header := ">"
		if !strings.HasSuffix(s.Text, "\n") {
			header = ">-"
		}
		sb.WriteString(before)
		sb.WriteString(header)
		sb.WriteString(after)
		sb.WriteString("\n")
		pad := strings.Repeat(" ", blockAnchor(before)+indent)
		for _, l := range s.FoldedLines() {
			if l != "" {
				sb.WriteString(pad)
				sb.WriteString(l)
			}
			sb.WriteString("\n")
		}
	}
	if found != len(folded) {
		return nil, fmt.Errorf("yaml: rendered %d of %d folded blocks", found, len(folded))
	}
	return []byte(sb.String()), nil
}

func findPlaceholder(line string, folded map[string]*Scalar) (id, before, after string, ok bool) {
	for id := range folded {
		idx := strings.Index(line, id)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(id):]
		// Guard against a longer placeholder sharing this one as prefix.
		if rest != "" && rest[0] != ' ' {
			continue
		}
		return id, line[:idx], rest, true
	}
	return "", "", "", false
}

// blockAnchor returns the column of the node owning a value that starts
// after prefix: the key column for "key: ", or the last dash for "- ".
func blockAnchor(prefix string) int {
	col := 0
	for col < len(prefix) && prefix[col] == ' ' {
		col++
	}
	anchor := col
	for strings.HasPrefix(prefix[col:], "- ") || strings.HasPrefix(prefix[col:], "? ") || strings.HasPrefix(prefix[col:], ": ") {
		anchor = col
		col += 2
	}
	if col < len(prefix) {
		// a key follows the dashes
		anchor = col
	}
	return anchor
}

func restoreIndentlessSequences(data []byte, indent int, infos []indentlessInfo) []byte {
	if indent <= 0 {
		return data
	}
	lines := bytes.Split(data, []byte("\n"))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lineIndent := leadingSpaces(line)
		trimmed := strings.TrimSpace(string(line))
		for _, info := range infos {
			if lineIndent == info.indent && trimmed == info.key+":" {
				for j := i + 1; j < len(lines); j++ {
					l := lines[j]
					if len(bytes.TrimSpace(l)) == 0 {
						continue
					}
					lIndent := leadingSpaces(l)
					if lIndent <= info.indent {
						break
					}
					if lIndent >= indent {
						lines[j] = dropIndent(l, indent)
					}
				}
				break
			}
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

func dropIndent(line []byte, count int) []byte {
	if count <= 0 {
		return append([]byte(nil), line...)
	}
	idx := 0
	for idx < len(line) && idx < count && line[idx] == ' ' {
		idx++
	}
	return append([]byte(nil), line[idx:]...)
}

func applyCommentSpacing(data []byte, spacing map[string]int) []byte {
	if len(spacing) == 0 {
		return data
	}
	lines := bytes.Split(data, []byte("\n"))
	for i, l := range lines {
		idx := bytes.IndexByte(l, '#')
		if idx <= 0 {
			continue
		}
		comment := string(l[idx:])
		want, ok := spacing[comment]
		if !ok {
			continue
		}
		spaces := 0
		for j := idx - 1; j >= 0 && l[j] == ' '; j-- {
			spaces++
		}
		if spaces == want || spaces == 0 {
			continue
		}
		trimEnd := idx - spaces
		nl := append([]byte(nil), l[:trimEnd]...)
		nl = append(nl, bytes.Repeat([]byte(" "), want)...)
		nl = append(nl, l[idx:]...)
		lines[i] = nl
	}
	return bytes.Join(lines, []byte("\n"))
}
