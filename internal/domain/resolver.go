package domain

import "strings"

// MatchKind records how a boundary code was resolved.
type MatchKind string

const (
	MatchDirect MatchKind = "direct"
	MatchAlias  MatchKind = "alias"
	MatchNone   MatchKind = "none"
)

// IdentifierSet is the set of country identifiers present in the statistical
// slice being displayed.
type IdentifierSet map[string]struct{}

// NewIdentifierSet builds a set from ids.
func NewIdentifierSet(ids ...string) IdentifierSet {
	s := make(IdentifierSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IdentifierSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Resolver reconciles boundary codes with statistical identifiers.
type Resolver struct {
	aliases *AliasTable
}

// NewResolver returns a resolver over the given alias table. A nil table
// restricts resolution to direct matches.
func NewResolver(aliases *AliasTable) *Resolver {
	return &Resolver{aliases: aliases}
}

// Resolve returns the identifier in candidates that denotes the same country
// as geoCode. A direct match wins; otherwise the alias variants are tried in
// declaration order. The boolean is false when nothing matches, including
// for an empty code.
func (r *Resolver) Resolve(geoCode string, candidates IdentifierSet) (string, bool) {
	id, kind := r.ResolveKind(geoCode, candidates)
	return id, kind != MatchNone
}

// ResolveKind is Resolve plus how the match was found.
func (r *Resolver) ResolveKind(geoCode string, candidates IdentifierSet) (string, MatchKind) {
	geoCode = strings.TrimSpace(geoCode)
	if geoCode == "" || len(candidates) == 0 {
		return "", MatchNone
	}
	if candidates.Has(geoCode) {
		return geoCode, MatchDirect
	}
	if r.aliases == nil {
		return "", MatchNone
	}
	for _, v := range r.aliases.variants[geoCode] {
		if candidates.Has(v) {
			return v, MatchAlias
		}
	}
	return "", MatchNone
}
