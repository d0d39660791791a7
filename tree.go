// Package eyamladd encrypts the leaves of clear-text documents with eyaml and
// merges the encrypted result into existing (e)yaml files.
package eyamladd

import "fmt"

// Kind identifies the shape of a Value.
type Kind int

const (
	ScalarKind Kind = iota + 1
	MappingKind
	SequenceKind
	SetKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case MappingKind:
		return "mapping"
	case SequenceKind:
		return "sequence"
	case SetKind:
		return "set"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a node of a structured tree. The concrete types are *Scalar,
// *Mapping, *Sequence and *Set.
type Value interface {
	Kind() Kind
	// Clone returns a deep copy.
	Clone() Value
	isValue()
}

// Style is the rendering hint of a scalar.
type Style int

const (
	PlainStyle Style = iota
	DoubleQuotedStyle
	SingleQuotedStyle
	LiteralStyle
	FoldedStyle
)

// Comments holds the YAML comments attached to a node.
type Comments struct {
	Head string
	Line string
	Foot string
}

func (c Comments) empty() bool {
	return c.Head == "" && c.Line == "" && c.Foot == ""
}

// Scalar is a leaf value. Text holds the lexical form; for FoldedStyle
// scalars produced by FormatBlock it contains fold markers.
type Scalar struct {
	Text  string
	Tag   string // resolved YAML tag, empty means !!str
	Style Style
	Comments
}

// NewString returns a plain string scalar.
func NewString(s string) *Scalar {
	return &Scalar{Text: s, Tag: tagStr}
}

func (*Scalar) Kind() Kind { return ScalarKind }
func (*Scalar) isValue()   {}

func (s *Scalar) Clone() Value {
	cp := *s
	return &cp
}

// Folded reports whether the scalar renders as a folded block.
func (s *Scalar) Folded() bool { return s.Style == FoldedStyle }

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key      string
	KeyTag   string
	KeyStyle Style
	Value    Value
	// KeyComments are the comments attached to the key node.
	KeyComments Comments
}

// Mapping is an ordered collection of unique string keys.
type Mapping struct {
	Entries []*Entry
	Tag     string
	Flow    bool
	Comments
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{}
}

func (*Mapping) Kind() Kind { return MappingKind }
func (*Mapping) isValue()   {}

func (m *Mapping) Clone() Value {
	cp := &Mapping{Tag: m.Tag, Flow: m.Flow, Comments: m.Comments}
	if m.Entries != nil {
		cp.Entries = make([]*Entry, len(m.Entries))
		for i, e := range m.Entries {
			ce := *e
			ce.Value = e.Value.Clone()
			cp.Entries[i] = &ce
		}
	}
	return cp
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.Entries) }

// Keys returns the keys in order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		keys[i] = e.Key
	}
	return keys
}

func (m *Mapping) entry(key string) *Entry {
	for _, e := range m.Entries {
		if e.Key == key {
			return e
		}
	}
	return nil
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if e := m.entry(key); e != nil {
		return e.Value, true
	}
	return nil, false
}

// Set stores v under key. An existing key keeps its position.
func (m *Mapping) Set(key string, v Value) {
	if e := m.entry(key); e != nil {
		e.Value = v
		return
	}
	m.Entries = append(m.Entries, &Entry{Key: key, KeyTag: tagStr, Value: v})
}

// Sequence is an ordered list of values.
type Sequence struct {
	Items []Value
	Tag   string
	Flow  bool
	Comments
}

// NewSequence returns a sequence holding items.
func NewSequence(items ...Value) *Sequence {
	return &Sequence{Items: items}
}

func (*Sequence) Kind() Kind { return SequenceKind }
func (*Sequence) isValue()   {}

func (s *Sequence) Clone() Value {
	cp := &Sequence{Tag: s.Tag, Flow: s.Flow, Comments: s.Comments}
	if s.Items != nil {
		cp.Items = cloneValues(s.Items)
	}
	return cp
}

func cloneValues(in []Value) []Value {
	out := make([]Value, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

// Set is an ordered collection of unique scalar members (YAML !!set).
type Set struct {
	Members []string
	Comments
}

// NewSet returns a set of the given members, dropping duplicates.
func NewSet(members ...string) *Set {
	s := &Set{}
	s.Add(members...)
	return s
}

func (*Set) Kind() Kind { return SetKind }
func (*Set) isValue()   {}

func (s *Set) Clone() Value {
	return &Set{Members: append([]string(nil), s.Members...), Comments: s.Comments}
}

// Has reports whether member is in the set.
func (s *Set) Has(member string) bool {
	for _, m := range s.Members {
		if m == member {
			return true
		}
	}
	return false
}

// Add appends members not already present.
func (s *Set) Add(members ...string) {
	for _, m := range members {
		if !s.Has(m) {
			s.Members = append(s.Members, m)
		}
	}
}
