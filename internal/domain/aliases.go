package domain

import (
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultAliases []byte

// AliasTable maps a boundary code to the ordered identifier variants a
// statistical table may use for the same country. It is immutable once
// built; lookups hand out copies.
type AliasTable struct {
	variants map[string][]string
}

// NewAliasTable builds a table from a code → variants mapping. Codes and
// variants are trimmed; empty variants and repeats within a list are dropped
// while the declaration order is kept.
func NewAliasTable(m map[string][]string) (*AliasTable, error) {
	t := &AliasTable{variants: make(map[string][]string, len(m))}
	for code, vs := range m {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fmt.Errorf("alias table: empty code")
		}
		list := make([]string, 0, len(vs))
		for _, v := range vs {
			v = strings.TrimSpace(v)
			if v == "" || slices.Contains(list, v) {
				continue
			}
			list = append(list, v)
		}
		t.variants[code] = list
	}
	return t, nil
}

// LoadAliasTable decodes a YAML document of the form `GR: [GR, GRC, EL]`.
func LoadAliasTable(r io.Reader) (*AliasTable, error) {
	var m map[string][]string
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if err == io.EOF {
			return NewAliasTable(nil)
		}
		return nil, fmt.Errorf("decode alias table: %w", err)
	}
	return NewAliasTable(m)
}

var defaultAliasTable = sync.OnceValues(func() (*AliasTable, error) {
	return LoadAliasTable(strings.NewReader(string(defaultAliases)))
})

// DefaultAliasTable returns the embedded table. It is parsed on first use
// and shared afterwards.
func DefaultAliasTable() *AliasTable {
	t, err := defaultAliasTable()
	if err != nil {
		// The embedded document is part of the build.
		panic(err)
	}
	return t
}

// Variants returns a copy of the variants declared for code.
func (t *AliasTable) Variants(code string) []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.variants[code])
}

// Codes returns the declared codes in sorted order.
func (t *AliasTable) Codes() []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.variants))
	for c := range t.variants {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

// Len returns the number of declared codes.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.variants)
}
