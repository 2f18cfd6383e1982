package reference

import (
	"strings"

	"github.com/blueprint-graph/compiler/internal/blueprint"
)

const resourcePrefix = "${resource."

// Match is one resource reference found in serialized text.
type Match struct {
	Name   string // referenced resource name
	Field  string // attribute read from it
	Offset int    // byte offset of "${" in the scanned text
	Text   string // the whole placeholder, delimiters included
}

// Scan returns every non-overlapping ${resource.<name>.<field>} placeholder in
// text, left to right. Names may contain letters, digits, '_', '.' and '-';
// fields letters, digits and '_'. Since names may contain dots the split falls
// on the last dot, and the placeholder must close right after the field.
func Scan(text string) []Match {
	var out []Match
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], resourcePrefix)
		if j < 0 {
			break
		}
		start := i + j
		m, end, ok := matchAt(text, start)
		if !ok {
			i = start + 1
			continue
		}
		out = append(out, m)
		i = end
	}
	return out
}

func matchAt(text string, start int) (Match, int, bool) {
	p := start + len(resourcePrefix)
	q := p
	for q < len(text) && isNameByte(text[q]) {
		q++
	}
	if q >= len(text) || text[q] != '}' {
		return Match{}, 0, false
	}
	run := text[p:q]
	dot := strings.LastIndexByte(run, '.')
	if dot <= 0 || dot == len(run)-1 {
		return Match{}, 0, false
	}
	field := run[dot+1:]
	for k := 0; k < len(field); k++ {
		if !isFieldByte(field[k]) {
			return Match{}, 0, false
		}
	}
	return Match{
		Name:   run[:dot],
		Field:  field,
		Offset: start,
		Text:   text[start : q+1],
	}, q + 1, true
}

func isFieldByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isNameByte(c byte) bool {
	return isFieldByte(c) || c == '.' || c == '-'
}

// InResource scans the canonical form of r's property bag.
func InResource(r *blueprint.Resource) []Match {
	return Scan(r.Properties.Canonical())
}

// Names returns the distinct resource names referenced by r, in order of
// first appearance.
func Names(r *blueprint.Resource) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range InResource(r) {
		if seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		names = append(names, m.Name)
	}
	return names
}
