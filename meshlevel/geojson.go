package meshlevel

import (
	"github.com/mastercactapus/planefunc/coord"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PointsGeoJSON returns points as GeoJSON features with the height in
// the "z" property.
func PointsGeoJSON(points []coord.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(orb.Point{p.X, p.Y})
		f.Properties["z"] = p.Z
		fc.Append(f)
	}
	return fc
}

// GeoJSON returns one polygon feature per mesh triangle, carrying the
// coefficients of its plane function.
func (m Mesh) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, t := range m.triangles {
		ring := orb.Ring{
			{t.A.X, t.A.Y},
			{t.B.X, t.B.Y},
			{t.C.X, t.C.Y},
			{t.A.X, t.A.Y},
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		fp := m.functions[i].FunParams()
		f.Properties["slopeX"] = fp.SlopeX
		f.Properties["slopeY"] = fp.SlopeY
		f.Properties["intercept"] = fp.Intercept
		fc.Append(f)
	}
	return fc
}
