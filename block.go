package eyamladd

import "strings"

// FoldMarker marks a fold point inside the content of a folded block scalar.
const FoldMarker = '\a'

const foldSep = string(FoldMarker) + "\n"

// FormatBlock turns raw multi-line ciphertext into a folded block scalar.
// Every line is trimmed and the lines are joined by the fold marker and a
// line break. The content always ends with exactly one newline so the block
// renders with clip chomping (">") instead of ">-".
func FormatBlock(raw string) *Scalar {
	lines := splitLines(raw)
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return &Scalar{
		Text:  strings.Join(lines, foldSep) + "\n",
		Tag:   tagStr,
		Style: FoldedStyle,
	}
}

// FoldedLines returns the lines of a folded scalar, split at fold points.
func (s *Scalar) FoldedLines() []string {
	body := strings.TrimSuffix(s.Text, "\n")
	if body == "" {
		return nil
	}
	return strings.Split(body, foldSep)
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not
// produce a final empty line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// foldedValue is the string a YAML reader obtains from the rendered block.
func foldedValue(text string) string {
	return strings.ReplaceAll(text, foldSep, " ")
}

// renderableFolded reports whether text can be written as a folded block
// line by line: every line break must be a fold point except a single
// trailing one.
func renderableFolded(text string) bool {
	body := strings.TrimSuffix(text, "\n")
	if strings.HasSuffix(body, "\n") {
		return false
	}
	for _, line := range strings.Split(body, foldSep) {
		if strings.ContainsAny(line, "\n\r") {
			return false
		}
		if line != strings.TrimSpace(line) {
			return false
		}
	}
	return true
}
