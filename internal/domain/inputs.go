package domain

// Inputs is one decoded, not yet joined, set of dashboard sources.
type Inputs struct {
	Satisfaction []RawRow
	Income       []RawRow
	Features     []GeoFeature
	Aliases      *AliasTable
}
