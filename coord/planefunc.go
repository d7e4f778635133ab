package coord

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const (
	// ZEpsilon is the smallest |normal.Z| a function plane may have.
	ZEpsilon = 1e-6

	// maxResample bounds the draws spent looking for a non-vertical normal.
	maxResample = 1000
)

var (
	// ErrNonFunctionPlane is returned for vertical planes, which cannot be
	// written as z = f(x, y).
	ErrNonFunctionPlane = errors.New("plane is not a function of x and y")

	// ErrInvalidTilt is returned when a tilt range contains no angle that
	// yields a function plane.
	ErrInvalidTilt = errors.New("tilt range has no function plane")

	// ErrInvalidAngle is returned for NaN or infinite angles.
	ErrInvalidAngle = errors.New("invalid angle")
)

// IsFunctionNormal reports whether p can be the normal of a PlaneFunction.
func IsFunctionNormal(p Point) bool {
	return math.Abs(p.Z) > ZEpsilon
}

// FunctionParams are the coefficients of z = SlopeX*x + SlopeY*y + Intercept.
type FunctionParams struct {
	SlopeX, SlopeY, Intercept float64
}

// PlaneFunction is a non-vertical plane evaluated as z = f(x, y).
//
// The function coefficients are derived whenever the plane changes so Z
// never touches the implicit form. The zero value is not valid, use
// DefaultPlaneFunction or one of the constructors.
type PlaneFunction struct {
	plane Plane
	fn    FunctionParams
}

// DefaultPlaneFunction returns z = 0.
func DefaultPlaneFunction() PlaneFunction {
	f, _ := newPlaneFunction(Plane{normal: Point{Z: 1}})
	return f
}

// NewPlaneFunction builds the function plane a*x + b*y + c*z = 0.
func NewPlaneFunction(a, b, c float64) (PlaneFunction, error) {
	return NewPlaneFunctionNormal(Point{a, b, c}, 0)
}

// NewPlaneFunctionNormal builds the function plane normal.(x,y,z) + offset = 0.
func NewPlaneFunctionNormal(normal Point, offset float64) (PlaneFunction, error) {
	var f PlaneFunction
	err := f.SetPlane(normal, offset)
	if err != nil {
		return PlaneFunction{}, err
	}
	return f, nil
}

// PlaneFunctionFromPointAndNorm builds the function plane through point
// facing norm.
func PlaneFunctionFromPointAndNorm(point, norm Point) (PlaneFunction, error) {
	var f PlaneFunction
	err := f.FromPointAndNorm(point, norm)
	if err != nil {
		return PlaneFunction{}, err
	}
	return f, nil
}

func newPlaneFunction(p Plane) (PlaneFunction, error) {
	if !IsFunctionNormal(p.normal) {
		return PlaneFunction{}, ErrNonFunctionPlane
	}
	n := p.normal
	fn := FunctionParams{
		SlopeX:    -n.X / n.Z,
		SlopeY:    -n.Y / n.Z,
		Intercept: -p.offset / n.Z,
	}
	if !finite(fn.SlopeX, fn.SlopeY, fn.Intercept) {
		return PlaneFunction{}, ErrNonFinite
	}
	return PlaneFunction{plane: p, fn: fn}, nil
}

// commit validates p and stores it with fresh function coefficients.
func (f *PlaneFunction) commit(p Plane) error {
	nf, err := newPlaneFunction(p)
	if err != nil {
		return err
	}
	*f = nf
	return nil
}

// SetPlane replaces the plane of f. On error f is left unchanged.
func (f *PlaneFunction) SetPlane(normal Point, offset float64) error {
	p, err := normalize(normal, offset)
	if err != nil {
		return err
	}
	return f.commit(p)
}

// FromPointAndNorm sets f to the plane through point facing norm.
// On error f is left unchanged.
func (f *PlaneFunction) FromPointAndNorm(point, norm Point) error {
	var p Plane
	err := p.FromPointAndNorm(point, norm)
	if err != nil {
		return err
	}
	return f.commit(p)
}

// SetRandomPlane behaves like Plane.SetRandomPlane, resampling while the
// normal is vertical. On error f is left unchanged.
func (f *PlaneFunction) SetRandomPlane(rng *rand.Rand, d1, d2 float64) error {
	var p Plane
	for i := 0; ; i++ {
		err := p.SetRandomPlane(rng, d1, d2)
		if err != nil {
			return err
		}
		if IsFunctionNormal(p.normal) {
			break
		}
		if i == maxResample {
			// odds of reaching this are around 1e-6^1000
			p.normal = Point{Z: 1}
			break
		}
	}
	return f.commit(p)
}

// tiltSpan is a range of tilts from the z axis.
type tiltSpan struct{ lo, hi float64 }

// functionTilts returns the parts of [lo, hi] that yield function planes:
// those outside the band around pi/2 where |cos| <= ZEpsilon.
func functionTilts(lo, hi float64) []tiltSpan {
	edge := math.Acos(ZEpsilon)
	var spans []tiltSpan
	if lo < edge {
		spans = append(spans, tiltSpan{lo, math.Min(hi, edge)})
	}
	if hi > math.Pi-edge {
		spans = append(spans, tiltSpan{math.Max(lo, math.Pi-edge), hi})
	}
	return spans
}

// randomTilt draws a tilt uniformly over the combined length of spans.
func randomTilt(rng *rand.Rand, spans []tiltSpan) float64 {
	var total float64
	for _, s := range spans {
		total += s.hi - s.lo
	}
	r := rng.Float64() * total
	for _, s := range spans {
		if r <= s.hi-s.lo {
			return s.lo + r
		}
		r -= s.hi - s.lo
	}
	last := spans[len(spans)-1]
	return last.hi
}

// SetRandomFunction sets f to a plane through (x, y, z) with z uniform in
// [min, max] and a tilt from the z axis uniform in [minAngle, maxAngle]
// radians. The tilt direction is uniform around the z axis.
//
// Angles are taken by magnitude and clipped to pi; tilts beyond pi/2 give
// downward normals. The band of vertical tilts around pi/2 is skipped and
// ErrInvalidTilt is returned if nothing else is left of the range.
func (f *PlaneFunction) SetRandomFunction(rng *rand.Rand, x, y, min, max, minAngle, maxAngle float64) error {
	if !finite(minAngle, maxAngle) {
		return ErrInvalidAngle
	}
	if !finite(x, y, min, max) {
		return ErrNonFinite
	}
	lo, hi := math.Min(math.Abs(minAngle), math.Pi), math.Min(math.Abs(maxAngle), math.Pi)
	if lo > hi {
		lo, hi = hi, lo
	}
	spans := functionTilts(lo, hi)
	if len(spans) == 0 {
		return ErrInvalidTilt
	}

	for i := 0; i < maxResample; i++ {
		n := tilted(Point{Z: 1}, randomTilt(rng, spans), rng.Float64()*2*math.Pi)
		if IsFunctionNormal(n) {
			return f.FromPointAndNorm(Point{x, y, uniform(rng, min, max)}, n)
		}
	}
	// only reachable when the range is a sliver at the band edge
	return ErrInvalidTilt
}

// Neighbour returns a new function g with |g(x,y) - f(x,y)| <= deltaZ whose
// normal is at most deltaAng radians from the normal of f.
func (f PlaneFunction) Neighbour(rng *rand.Rand, x, y, deltaZ, deltaAng float64) (PlaneFunction, error) {
	if !finite(x, y, deltaZ) {
		return PlaneFunction{}, ErrNonFinite
	}
	z := f.Z(x, y)
	deltaZ = math.Abs(deltaZ)
	return f.NeighbourInRange(rng, x, y, z-deltaZ, z+deltaZ, deltaAng)
}

// NeighbourInRange returns a new function g with g(x,y) in [minZ, maxZ]
// whose normal is at most deltaAng radians from the normal of f.
//
// The normal is drawn uniformly over the spherical cap around f's normal.
func (f PlaneFunction) NeighbourInRange(rng *rand.Rand, x, y, minZ, maxZ, deltaAng float64) (PlaneFunction, error) {
	if !finite(deltaAng) {
		return PlaneFunction{}, ErrInvalidAngle
	}
	if !finite(x, y, minZ, maxZ) {
		return PlaneFunction{}, ErrNonFinite
	}

	// the receiver's own normal is the fallback, it lies in every cap
	n := f.plane.normal
	for i := 0; i < maxResample; i++ {
		c := randomInCone(rng, f.plane.normal, deltaAng)
		if IsFunctionNormal(c) {
			n = c
			break
		}
	}

	var g PlaneFunction
	err := g.FromPointAndNorm(Point{x, y, uniform(rng, minZ, maxZ)}, n)
	if err != nil {
		return PlaneFunction{}, err
	}
	return g, nil
}

// Z evaluates the function at (x, y).
func (f PlaneFunction) Z(x, y float64) float64 {
	return f.fn.SlopeX*x + f.fn.SlopeY*y + f.fn.Intercept
}

// FunParams returns the explicit function coefficients.
func (f PlaneFunction) FunParams() FunctionParams { return f.fn }

// Plane returns the underlying implicit plane.
func (f PlaneFunction) Plane() Plane { return f.plane }

func (f PlaneFunction) Params() (normal Point, offset float64) { return f.plane.Params() }
func (f PlaneFunction) Distance(pt Point) float64 { return f.plane.Distance(pt) }
func (f PlaneFunction) PointAndNorm() (point, normal Point) { return f.plane.PointAndNorm() }

// Equal reports whether f and o describe the same plane.
func (f PlaneFunction) Equal(o PlaneFunction) bool { return f.plane.Equal(o.plane) }

func (f PlaneFunction) String() string {
	return fmt.Sprintf("%s z = %g*x + %g*y + %g", f.plane, f.fn.SlopeX, f.fn.SlopeY, f.fn.Intercept)
}

type planeFunctionJSON struct {
	Normal   Point
	Offset   float64
	Function FunctionParams
}

func (f PlaneFunction) MarshalJSON() ([]byte, error) {
	return json.Marshal(planeFunctionJSON{Normal: f.plane.normal, Offset: f.plane.offset, Function: f.fn})
}

// UnmarshalJSON decodes Normal and Offset and rederives the function
// coefficients; any encoded Function field is ignored.
func (f *PlaneFunction) UnmarshalJSON(data []byte) error {
	var v planeFunctionJSON
	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}
	return f.SetPlane(v.Normal, v.Offset)
}
