package domain

import "github.com/paulmach/orb"

// GeoFeature is a map region annotated with its boundary code. It never
// holds statistics; values are joined at view time through the Resolver.
type GeoFeature struct {
	Code     string // properties.id, may be empty
	Name     string // properties.name
	AltName  string // properties.na
	Geometry orb.Geometry
}

// DisplayName picks the first non-empty of name, alternate name and code.
func (f GeoFeature) DisplayName() string {
	switch {
	case f.Name != "":
		return f.Name
	case f.AltName != "":
		return f.AltName
	default:
		return f.Code
	}
}

// Bound returns the bounding box of the geometry, or an empty bound when
// the feature has none.
func (f GeoFeature) Bound() orb.Bound {
	if f.Geometry == nil {
		return orb.Bound{}
	}
	return f.Geometry.Bound()
}
