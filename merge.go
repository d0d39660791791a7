package eyamladd

import "fmt"

// Merge deep merges src into dst.
//
//   - sequences are appended to existing sequences
//   - mappings are merged recursively
//   - sets are unioned
//   - scalars in src replace the value in dst
//
// Values missing from dst are deep copied. Keys only present in dst are left
// alone. Merging a container into an existing value of another kind returns
// ErrKindConflict; dst may already hold the keys merged before the conflict.
func Merge(dst, src *Mapping) error {
	return mergeMapping(dst, src, "")
}

func mergeMapping(dst, src *Mapping, path string) error {
	for _, e := range src.Entries {
		key := joinKey(path, e.Key)
		existing := dst.entry(e.Key)

		switch v := e.Value.(type) {
		case *Sequence:
			if existing == nil {
				dst.Entries = append(dst.Entries, cloneEntry(e))
				continue
			}
			seq, ok := existing.Value.(*Sequence)
			if !ok {
				return kindConflict(key, existing.Value, v)
			}
			seq.Items = append(seq.Items, cloneValues(v.Items)...)

		case *Mapping:
			if existing == nil {
				dst.Entries = append(dst.Entries, cloneEntry(e))
				continue
			}
			m, ok := existing.Value.(*Mapping)
			if !ok {
				return kindConflict(key, existing.Value, v)
			}
			if err := mergeMapping(m, v, key); err != nil {
				return err
			}

		case *Set:
			if existing == nil {
				dst.Entries = append(dst.Entries, cloneEntry(e))
				continue
			}
			set, ok := existing.Value.(*Set)
			if !ok {
				return kindConflict(key, existing.Value, v)
			}
			set.Add(v.Members...)

		case *Scalar:
			cp := *v
			if existing == nil {
				ne := *e
				ne.Value = &cp
				dst.Entries = append(dst.Entries, &ne)
				continue
			}
			if cp.Comments.empty() {
				if old := commentsOf(existing.Value); old != nil {
					cp.Comments = *old
				}
			}
			existing.Value = &cp

		default:
			return fmt.Errorf("%w: %s: unsupported value %T", ErrKindConflict, key, v)
		}
	}
	return nil
}

func cloneEntry(e *Entry) *Entry {
	ce := *e
	ce.Value = e.Value.Clone()
	return &ce
}

func kindConflict(path string, dst, src Value) error {
	return fmt.Errorf("%w: %s: cannot merge %s into %s", ErrKindConflict, path, src.Kind(), dst.Kind())
}

func commentsOf(v Value) *Comments {
	switch t := v.(type) {
	case *Scalar:
		return &t.Comments
	case *Mapping:
		return &t.Comments
	case *Sequence:
		return &t.Comments
	case *Set:
		return &t.Comments
	default:
		return nil
	}
}
