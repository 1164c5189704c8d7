package serializer

import (
	"regexp"
)

// variablePattern matches {{ name }} placeholders. Dotted paths such as
// contact.first_name are kept whole.
var variablePattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s*\}\}`)

type variableSet struct {
	seen  map[string]bool
	order []string
}

func newVariableSet() *variableSet {
	return &variableSet{seen: make(map[string]bool)}
}

func (v *variableSet) scan(s string) {
	for _, m := range variablePattern.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if v.seen[name] {
			continue
		}
		v.seen[name] = true
		v.order = append(v.order, name)
	}
}

func (v *variableSet) list() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// ExtractVariables returns the placeholders used across texts, without
// duplicates, in order of first appearance
func ExtractVariables(texts ...string) []string {
	v := newVariableSet()
	for _, s := range texts {
		v.scan(s)
	}
	return v.list()
}
