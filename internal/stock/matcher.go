package stock

import (
	"regexp"
	"strings"
)

type compiledSymbol struct {
	key      string
	patterns []*regexp.Regexp
}

// Matcher maps free text to the symbols whose aliases appear as whole words.
type Matcher struct {
	symbols []compiledSymbol
}

// NewMatcher precompiles a word-boundary pattern for every alias.
func NewMatcher(table *SymbolTable) *Matcher {
	m := &Matcher{symbols: make([]compiledSymbol, 0, len(table.symbols))}
	for _, s := range table.symbols {
		cs := compiledSymbol{key: s.Key}
		for _, a := range s.Aliases {
			cs.patterns = append(cs.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(a)+`\b`))
		}
		m.symbols = append(m.symbols, cs)
	}
	return m
}

// Match returns the keys of every symbol with at least one alias in title, in
// table order. The result is never nil.
func (m *Matcher) Match(title string) []string {
	matched := []string{}
	lower := strings.ToLower(title)
	if strings.TrimSpace(lower) == "" {
		return matched
	}
	for _, s := range m.symbols {
		for _, p := range s.patterns {
			if p.MatchString(lower) {
				matched = append(matched, s.key)
				break
			}
		}
	}
	return matched
}
