// Package mention finds @username references in free text.
package mention

import (
	"regexp"
	"sort"
)

var pattern = regexp.MustCompile(`@([\p{L}\p{N}_]+)`)

// Set is an unordered collection of usernames, case preserved.
type Set map[string]struct{}

// Extract returns the distinct usernames referenced as "@name" in text.
func Extract(text string) Set {
	out := Set{}
	if text == "" {
		return out
	}
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		out[m[1]] = struct{}{}
	}
	return out
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
