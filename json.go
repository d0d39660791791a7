package eyamladd

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON encodes the scalar as a JSON string, or as a bare token when
// the YAML tag says it is a number, boolean or null.
func (s *Scalar) MarshalJSON() ([]byte, error) {
	switch s.Tag {
	case tagInt, tagFloat, tagBool, tagNull:
		text := s.Text
		if s.Tag == tagNull {
			text = "null"
		}
		if json.Valid([]byte(text)) {
			return []byte(text), nil
		}
	}
	return json.Marshal(s.Text)
}

// MarshalJSON encodes the mapping as a JSON object in entry order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the sequence as a JSON array.
func (s *Sequence) MarshalJSON() ([]byte, error) {
	items := s.Items
	if items == nil {
		items = []Value{}
	}
	return json.Marshal(items)
}

// MarshalJSON encodes the set as a JSON array of its members.
func (s *Set) MarshalJSON() ([]byte, error) {
	members := s.Members
	if members == nil {
		members = []string{}
	}
	return json.Marshal(members)
}

// DumpJSON renders v as indented JSON for diagnostics.
func DumpJSON(v Value) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}
