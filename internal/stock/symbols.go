package stock

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSymbol is returned when a symbol key is not present in the table.
var ErrUnknownSymbol = errors.New("unknown stock symbol")

// Symbol is a canonical key with the lowercase aliases that identify it.
type Symbol struct {
	Key     string   `yaml:"key" json:"key"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// SymbolTable is an ordered, immutable symbol to alias mapping.
type SymbolTable struct {
	symbols []Symbol
	index   map[string]int
}

// NewSymbolTable builds a table, lowercasing keys and aliases. Duplicate keys
// and symbols without aliases are rejected.
func NewSymbolTable(symbols []Symbol) (*SymbolTable, error) {
	t := &SymbolTable{index: make(map[string]int, len(symbols))}
	for _, s := range symbols {
		key := strings.ToLower(strings.TrimSpace(s.Key))
		if key == "" {
			return nil, errors.New("symbol key is empty")
		}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("duplicate symbol %q", key)
		}
		aliases := make([]string, 0, len(s.Aliases))
		for _, a := range s.Aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a != "" {
				aliases = append(aliases, a)
			}
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("symbol %q has no aliases", key)
		}
		t.index[key] = len(t.symbols)
		t.symbols = append(t.symbols, Symbol{Key: key, Aliases: aliases})
	}
	return t, nil
}

// DefaultSymbols is the built-in table used when no table file is configured.
func DefaultSymbols() []Symbol {
	return []Symbol{
		{Key: "tesla", Aliases: []string{"tsla", "tesla"}},
		{Key: "nvidia", Aliases: []string{"nvda", "nvidia"}},
		{Key: "apple", Aliases: []string{"aapl", "apple"}},
		{Key: "meta", Aliases: []string{"meta", "facebook", "fb"}},
		{Key: "amazon", Aliases: []string{"amzn", "amazon"}},
		{Key: "google", Aliases: []string{"googl", "google", "alphabet"}},
		{Key: "microsoft", Aliases: []string{"msft", "microsoft"}},
		{Key: "netflix", Aliases: []string{"nflx", "netflix"}},
		{Key: "amd", Aliases: []string{"amd"}},
		{Key: "pltr", Aliases: []string{"pltr", "palantir"}},
		{Key: "smci", Aliases: []string{"smci"}},
		{Key: "mu", Aliases: []string{"mu", "micron"}},
		{Key: "qqq", Aliases: []string{"qqq"}},
		{Key: "spy", Aliases: []string{"spy"}},
	}
}

// DefaultSymbolTable returns the built-in table.
func DefaultSymbolTable() *SymbolTable {
	t, err := NewSymbolTable(DefaultSymbols())
	if err != nil {
		panic(err)
	}
	return t
}

type symbolFile struct {
	Symbols []Symbol `yaml:"symbols"`
}

// LoadSymbolTable reads a YAML table of the form
//
//	symbols:
//	  - key: tesla
//	    aliases: [tsla, tesla]
//
// An empty path yields the built-in table.
func LoadSymbolTable(path string) (*SymbolTable, error) {
	if path == "" {
		return DefaultSymbolTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol table: %w", err)
	}
	var f symbolFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse symbol table: %w", err)
	}
	if len(f.Symbols) == 0 {
		return nil, fmt.Errorf("symbol table %s is empty", path)
	}
	return NewSymbolTable(f.Symbols)
}

// Symbols returns the entries in table order.
func (t *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, len(t.symbols))
	copy(out, t.symbols)
	return out
}

// Keys returns the symbol keys in table order.
func (t *SymbolTable) Keys() []string {
	keys := make([]string, len(t.symbols))
	for i, s := range t.symbols {
		keys[i] = s.Key
	}
	return keys
}

// Aliases returns the aliases of key.
func (t *SymbolTable) Aliases(key string) ([]string, error) {
	i, ok := t.index[strings.ToLower(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, key)
	}
	return append([]string(nil), t.symbols[i].Aliases...), nil
}

// Has reports whether key is in the table.
func (t *SymbolTable) Has(key string) bool {
	_, ok := t.index[strings.ToLower(key)]
	return ok
}
