package meshlevel

import (
	"github.com/mastercactapus/planefunc/coord"
)

// ZOffsetter reports the surface height at x,y, if it has one.
type ZOffsetter interface {
	OffsetZ(x, y float64) (bool, float64)
}

// FunctionOffsetter is an unbounded surface described by one plane function.
type FunctionOffsetter struct {
	coord.PlaneFunction
}

func (f FunctionOffsetter) OffsetZ(x, y float64) (bool, float64) {
	return true, f.Z(x, y)
}
