package meshlevel

import (
	"errors"
	"math"
	"math/rand"

	"github.com/mastercactapus/planefunc/coord"
)

// GridOptions describe a rectangular sample grid starting at X,Y.
type GridOptions struct {
	X, Y                 float64
	DistanceX, DistanceY float64
	Granularity          float64
}

// TerrainOptions configure a synthetic sample grid around a base function.
type TerrainOptions struct {
	GridOptions

	// DeltaZ bounds the height deviation at the grid center.
	DeltaZ float64

	// DeltaAngle bounds the normal deviation in radians.
	DeltaAngle float64
}

// MaxGridPoints is the largest grid Points will generate.
const MaxGridPoints = 1 << 24

// ErrGridTooLarge is returned for grids with more than MaxGridPoints points.
var ErrGridTooLarge = errors.New("grid has too many points")

func (opt GridOptions) validate() error {
	for _, v := range []float64{opt.X, opt.Y, opt.DistanceX, opt.DistanceY, opt.Granularity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("grid options must be finite")
		}
	}
	if !(opt.Granularity > 0) {
		return errors.New("granularity must be positive")
	}
	if opt.DistanceX < 0 || opt.DistanceY < 0 {
		return errors.New("grid distances must not be negative")
	}
	x, y := opt.stepsFloat()
	if !((x+1)*(y+1) <= MaxGridPoints) {
		return ErrGridTooLarge
	}
	return nil
}

func (opt GridOptions) stepsFloat() (float64, float64) {
	xyDist := math.Sqrt(opt.Granularity * opt.Granularity / 2)

	return math.Ceil(opt.DistanceX / xyDist), math.Ceil(opt.DistanceY / xyDist)
}

// steps returns the number of grid intervals along X and Y. Only valid
// options may be passed.
func (opt GridOptions) steps() (int, int) {
	x, y := opt.stepsFloat()
	return int(x), int(y)
}

// Size returns the number of points Points will generate.
func (opt GridOptions) Size() (int, error) {
	err := opt.validate()
	if err != nil {
		return 0, err
	}
	x, y := opt.steps()
	return (x + 1) * (y + 1), nil
}

// Points will generate the XY positions of a grid scan.
//
// No two neighbouring points are farther than Granularity apart. Rows
// alternate direction so consecutive points are always adjacent.
func (opt GridOptions) Points() ([]coord.Point, error) {
	err := opt.validate()
	if err != nil {
		return nil, err
	}

	xCount, yCount := opt.steps()

	step := func(dist float64, count, i int) float64 {
		if count == 0 {
			return 0
		}
		return dist / float64(count) * float64(i)
	}

	res := make([]coord.Point, 0, (xCount+1)*(yCount+1))
	for y := 0; y <= yCount; y++ {
		for x := 0; x <= xCount; x++ {
			xVal := step(opt.DistanceX, xCount, x)
			if y%2 != 0 {
				xVal = opt.DistanceX - xVal
			}
			res = append(res, coord.Point{
				X: opt.X + xVal,
				Y: opt.Y + step(opt.DistanceY, yCount, y),
			})
		}
	}

	return res, nil
}

// Sample evaluates o at every grid point. Points o has no height for are
// left out.
func Sample(o ZOffsetter, opt GridOptions) ([]coord.Point, error) {
	pts, err := opt.Points()
	if err != nil {
		return nil, err
	}

	res := pts[:0]
	for _, p := range pts {
		ok, z := o.OffsetZ(p.X, p.Y)
		if !ok {
			continue
		}
		p.Z = z
		res = append(res, p)
	}
	return res, nil
}

// Terrain generates noisy samples of base.
//
// Every point samples its own neighbour of base, anchored at the grid
// center, so height noise grows with the distance from the center.
func Terrain(rng *rand.Rand, base coord.PlaneFunction, opt TerrainOptions) ([]coord.Point, error) {
	pts, err := opt.Points()
	if err != nil {
		return nil, err
	}

	cx := opt.X + opt.DistanceX/2
	cy := opt.Y + opt.DistanceY/2
	for i := range pts {
		g, err := base.Neighbour(rng, cx, cy, opt.DeltaZ, opt.DeltaAngle)
		if err != nil {
			return nil, err
		}
		pts[i].Z = g.Z(pts[i].X, pts[i].Y)
	}
	return pts, nil
}
