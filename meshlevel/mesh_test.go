package meshlevel

import (
	"encoding/json"
	"testing"

	"github.com/mastercactapus/planefunc/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// points indicate a rise
// of 30mm over 100mm or .3mmZ for every 1mm X
var risingPoints = []coord.Point{
	{X: -700, Y: -450, Z: -80},
	{X: -700, Y: -550, Z: -80},

	{X: -600, Y: -450, Z: -50},
	{X: -600, Y: -550, Z: -50},
}

func TestMesh_OffsetZ(t *testing.T) {
	mesh, err := NewMesh(risingPoints)
	require.NoError(t, err)
	assert.Len(t, mesh.Triangles(), 2)

	ok, z := mesh.OffsetZ(-650, -500)
	assert.True(t, ok)
	assert.InDelta(t, -65, z, 1e-9)

	ok, z = mesh.OffsetZ(-610, -460)
	assert.True(t, ok)
	assert.InDelta(t, -53, z, 1e-9)

	ok, z = mesh.OffsetZ(-700, -450)
	assert.True(t, ok)
	assert.InDelta(t, -80, z, 1e-9)

	ok, _ = mesh.OffsetZ(-500, -500)
	assert.False(t, ok)
}

func TestNewMesh_Invalid(t *testing.T) {
	_, err := NewMesh(risingPoints[:2])
	assert.Error(t, err)

	_, err = NewMesh([]coord.Point{{X: 0}, {X: 1}, {X: 2}})
	assert.Error(t, err)
}

func TestMesh_GeoJSON(t *testing.T) {
	mesh, err := NewMesh(risingPoints)
	require.NoError(t, err)

	fc := mesh.GeoJSON()
	require.Len(t, fc.Features, 2)
	for _, f := range fc.Features {
		assert.Equal(t, "Polygon", f.Geometry.GeoJSONType())
		assert.InDelta(t, 0.3, f.Properties["slopeX"], 1e-9)
		assert.InDelta(t, 0, f.Properties["slopeY"], 1e-9)
	}

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
}

func TestPointsGeoJSON(t *testing.T) {
	fc := PointsGeoJSON(risingPoints)
	require.Len(t, fc.Features, 4)
	assert.Equal(t, -80.0, fc.Features[0].Properties["z"])
	assert.Equal(t, "Point", fc.Features[0].Geometry.GeoJSONType())
}

func TestOffsetFrom(t *testing.T) {
	res := OffsetFrom(-80, risingPoints)
	assert.Equal(t, 0.0, res[0].Z)
	assert.Equal(t, 30.0, res[2].Z)
	assert.Equal(t, -80.0, risingPoints[0].Z, "input must not change")
}
