package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

// Property keys tried in order. The first set is what the dashboard
// boundaries carry; the rest cover common Eurostat and Natural Earth exports.
var (
	codeProperties = []string{"id", "country_code", "CNTR_CODE", "iso_a2"}
	nameProperties = []string{"name", "country_name", "NAME_LATN"}
)

// DecodeFeatures parses a GeoJSON FeatureCollection into boundary features.
// Features without a code are kept; they simply never resolve.
func DecodeFeatures(data []byte) ([]domain.GeoFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	features := make([]domain.GeoFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		code := firstProperty(f.Properties, codeProperties)
		if code == "" {
			code = stringValue(f.ID)
		}
		features = append(features, domain.GeoFeature{
			Code:     code,
			Name:     firstProperty(f.Properties, nameProperties),
			AltName:  stringValue(f.Properties["na"]),
			Geometry: f.Geometry,
		})
	}
	return features, nil
}

func firstProperty(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		if s := stringValue(props[k]); s != "" {
			return s
		}
	}
	return ""
}

// stringValue renders string and numeric property values. Numeric ids occur
// in some boundary files and must compare equal to their textual form.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
