package eyamladd

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	tagStr   = "!!str"
	tagMap   = "!!map"
	tagSeq   = "!!seq"
	tagSet   = "!!set"
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
)

// nodeEncoder converts a tree into yaml.v3 nodes while preserving the order
// of mapping entries. yaml.v3 cannot emit fold points, so folded scalars are
// encoded as unique plain placeholders and expanded after encoding.
type nodeEncoder struct {
	prefix string
	folded map[string]*Scalar
}

func newNodeEncoder(prefix string) *nodeEncoder {
	return &nodeEncoder{prefix: prefix, folded: map[string]*Scalar{}}
}

func (e *nodeEncoder) encode(v Value) *yaml.Node {
	switch t := v.(type) {
	case *Scalar:
		return e.scalar(t)

	case *Mapping:
		mp := &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
		if t.Tag != "" {
			mp.Tag = t.Tag
		}
		setNodeComments(mp, t.Comments)
		if len(t.Entries) == 0 || (t.Flow && !containsFolded(t)) {
			mp.Style = yaml.FlowStyle
		}
		for _, it := range t.Entries {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: it.KeyTag, Value: it.Key, Style: toNodeStyle(it.KeyStyle)}
			if key.Tag == "" {
				key.Tag = tagStr
			}
			setNodeComments(key, it.KeyComments)
			mp.Content = append(mp.Content, key, e.encode(it.Value))
		}
		return mp

	case *Sequence:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
		if t.Tag != "" {
			seq.Tag = t.Tag
		}
		setNodeComments(seq, t.Comments)
		if len(t.Items) == 0 || (t.Flow && !containsFolded(t)) {
			seq.Style = yaml.FlowStyle
		}
		for _, item := range t.Items {
			seq.Content = append(seq.Content, e.encode(item))
		}
		return seq

	case *Set:
		set := &yaml.Node{Kind: yaml.MappingNode, Tag: tagSet}
		setNodeComments(set, t.Comments)
		if len(t.Members) == 0 {
			set.Style = yaml.FlowStyle
		}
		for _, m := range t.Members {
			set.Content = append(set.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: m},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"},
			)
		}
		return set

	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}
	}
}

func (e *nodeEncoder) scalar(s *Scalar) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: s.Tag, Value: s.Text, Style: toNodeStyle(s.Style)}
	if n.Tag == "" {
		n.Tag = tagStr
	}
	setNodeComments(n, s.Comments)
	if !s.Folded() {
		return n
	}
	if !renderableFolded(s.Text) {
		// Fall back to yaml.v3's own folding of the logical value.
		n.Value = foldedValue(s.Text)
		return n
	}
	id := e.placeholder()
	e.folded[id] = s
	n.Value = id
	n.Tag = tagStr
	n.Style = 0
	return n
}

func (e *nodeEncoder) placeholder() string {
	return fmt.Sprintf("%s.%d", e.prefix, len(e.folded))
}

func containsFolded(v Value) bool {
	switch t := v.(type) {
	case *Scalar:
		return t.Folded()
	case *Mapping:
		for _, e := range t.Entries {
			if containsFolded(e.Value) {
				return true
			}
		}
	case *Sequence:
		for _, item := range t.Items {
			if containsFolded(item) {
				return true
			}
		}
	}
	return false
}

func setNodeComments(n *yaml.Node, c Comments) {
	n.HeadComment = c.Head
	n.LineComment = c.Line
	n.FootComment = c.Foot
}

func toNodeStyle(s Style) yaml.Style {
	switch s {
	case DoubleQuotedStyle:
		return yaml.DoubleQuotedStyle
	case SingleQuotedStyle:
		return yaml.SingleQuotedStyle
	case LiteralStyle:
		return yaml.LiteralStyle
	case FoldedStyle:
		return yaml.FoldedStyle
	default:
		return 0
	}
}

// encodeNode encodes a yaml node, stripping any leading '---' document marker.
func encodeNode(n *yaml.Node, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(n); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if bytes.HasPrefix(out, []byte("---\n")) {
		out = out[len("---\n"):]
	}
	return out, nil
}
