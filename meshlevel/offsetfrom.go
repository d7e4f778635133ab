package meshlevel

import (
	"github.com/mastercactapus/planefunc/coord"
)

// OffsetFrom returns a copy of points with every Z made relative to z.
func OffsetFrom(z float64, points []coord.Point) []coord.Point {
	p := make([]coord.Point, len(points))
	copy(p, points)

	for i := range p {
		p[i].Z -= z
	}
	return p
}
