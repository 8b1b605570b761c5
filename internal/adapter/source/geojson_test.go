package source

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boundariesJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"id": "GR", "name": "Greece"},
     "geometry": {"type": "Polygon", "coordinates": [[[20,35],[28,35],[28,41],[20,35]]]}},
    {"type": "Feature", "properties": {"CNTR_CODE": "NO", "na": "Norge"},
     "geometry": {"type": "Point", "coordinates": [10, 60]}},
    {"type": "Feature", "properties": {"id": 250},
     "geometry": null},
    {"type": "Feature", "properties": {"name": "Nowhere"},
     "geometry": null}
  ]
}`

func TestDecodeFeatures(t *testing.T) {
	features, err := DecodeFeatures([]byte(boundariesJSON))
	require.NoError(t, err)
	require.Len(t, features, 4)

	assert.Equal(t, "GR", features[0].Code)
	assert.Equal(t, "Greece", features[0].DisplayName())
	assert.Equal(t, orb.Bound{Min: orb.Point{20, 35}, Max: orb.Point{28, 41}}, features[0].Bound())

	assert.Equal(t, "NO", features[1].Code)
	assert.Equal(t, "Norge", features[1].DisplayName())

	assert.Equal(t, "250", features[2].Code)
	assert.Nil(t, features[2].Geometry)

	assert.Empty(t, features[3].Code)
	assert.Equal(t, "Nowhere", features[3].DisplayName())
}

func TestDecodeFeatures_NotACollection(t *testing.T) {
	_, err := DecodeFeatures([]byte(`{"type": "Feature", "properties": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode geojson")
}

func TestStringValue(t *testing.T) {
	assert.Equal(t, "AT", stringValue(" AT "))
	assert.Equal(t, "40", stringValue(float64(40)))
	assert.Equal(t, "7", stringValue(7))
	assert.Empty(t, stringValue(nil))
	assert.Empty(t, stringValue(true))
}
