package eyamladd

import (
	"context"
	"fmt"
	"strings"
)

// EncryptLeaves returns a copy of tree where every scalar leaf has been
// replaced by its encrypted folded block. Mappings keep their keys and key
// order, sequences their item order. Leaves are encrypted one at a time in
// document order; the first failure aborts the walk.
func EncryptLeaves(ctx context.Context, tree Value, c Cipher) (*Mapping, error) {
	root, ok := tree.(*Mapping)
	if !ok {
		kind := "nothing"
		if tree != nil {
			kind = tree.Kind().String()
		}
		return nil, fmt.Errorf("%w: got %s", ErrInvalidInputShape, kind)
	}
	w := walker{ctx: ctx, cipher: c}
	return w.mapping(root, "")
}

type walker struct {
	ctx    context.Context
	cipher Cipher
}

func (w walker) mapping(m *Mapping, path string) (*Mapping, error) {
	out := &Mapping{Tag: m.Tag, Comments: m.Comments, Entries: make([]*Entry, 0, len(m.Entries))}
	for _, e := range m.Entries {
		v, err := w.value(e.Value, joinKey(path, e.Key))
		if err != nil {
			return nil, err
		}
		ne := *e
		ne.Value = v
		out.Entries = append(out.Entries, &ne)
	}
	return out, nil
}

func (w walker) sequence(s *Sequence, path string) (*Sequence, error) {
	out := &Sequence{Tag: s.Tag, Comments: s.Comments, Items: make([]Value, 0, len(s.Items))}
	for i, item := range s.Items {
		v, err := w.value(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, v)
	}
	return out, nil
}

func (w walker) value(v Value, path string) (Value, error) {
	switch t := v.(type) {
	case *Mapping:
		return w.mapping(t, path)
	case *Sequence:
		return w.sequence(t, path)
	default:
		enc, err := EncryptLeaf(w.ctx, w.cipher, stringify(v))
		if err != nil {
			return nil, fmt.Errorf("encrypt %s: %w", path, err)
		}
		return enc, nil
	}
}

// stringify returns the plaintext handed to the cipher for a leaf. Numbers,
// booleans and null keep their lexical form from the input.
func stringify(v Value) string {
	switch t := v.(type) {
	case *Scalar:
		if t.Folded() {
			return foldedValue(t.Text)
		}
		return t.Text
	case *Set:
		return "{" + strings.Join(t.Members, ", ") + "}"
	default:
		return ""
	}
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
