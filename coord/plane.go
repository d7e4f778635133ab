package coord

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const (
	// DegenerateEpsilon is the smallest normal length that can be normalized.
	DegenerateEpsilon = 1e-12

	// PlaneEpsilon is the per-coefficient tolerance used by Equal.
	PlaneEpsilon = 1e-9
)

var (
	// ErrDegenerateNormal is returned when a plane normal is too short to normalize.
	ErrDegenerateNormal = errors.New("degenerate plane normal")

	// ErrNonFinite is returned for NaN or infinite coordinates and bounds.
	ErrNonFinite = errors.New("non-finite value")
)

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Surface is the read-only view shared by Plane and PlaneFunction.
type Surface interface {
	Params() (normal Point, offset float64)
	Distance(p Point) float64
	PointAndNorm() (point, normal Point)
}

// Plane is the implicit plane a*x + b*y + c*z + d = 0.
//
// The coefficients are scaled so (a, b, c) is a unit vector. Planes are
// values; copies never alias. The zero value is not a valid plane, use
// DefaultPlane or one of the constructors.
type Plane struct {
	normal Point
	offset float64
}

// DefaultPlane returns the plane x = 0.
func DefaultPlane() Plane {
	return Plane{normal: Point{X: 1}}
}

// NewPlane builds the plane a*x + b*y + c*z + d = 0.
func NewPlane(a, b, c, d float64) (Plane, error) {
	return NewPlaneNormal(Point{a, b, c}, d)
}

// NewPlaneNormal builds the plane normal.(x,y,z) + offset = 0.
func NewPlaneNormal(normal Point, offset float64) (Plane, error) {
	var p Plane
	err := p.SetPlane(normal, offset)
	if err != nil {
		return Plane{}, err
	}
	return p, nil
}

// PlaneFromPointAndNorm builds the plane through point with the given normal.
func PlaneFromPointAndNorm(point, norm Point) (Plane, error) {
	var p Plane
	err := p.FromPointAndNorm(point, norm)
	if err != nil {
		return Plane{}, err
	}
	return p, nil
}

func normalize(normal Point, offset float64) (Plane, error) {
	l := normal.Len()
	if !(l > DegenerateEpsilon) || math.IsInf(l, 0) {
		return Plane{}, ErrDegenerateNormal
	}
	if !finite(offset) {
		return Plane{}, ErrNonFinite
	}
	return Plane{normal: normal.Div(l), offset: offset / l}, nil
}

// SetPlane replaces the coefficients of p. Both normal and offset are
// scaled by 1/|normal|. On error p is left unchanged.
func (p *Plane) SetPlane(normal Point, offset float64) error {
	n, err := normalize(normal, offset)
	if err != nil {
		return err
	}
	*p = n
	return nil
}

// SetRandomPlane overwrites p with a plane whose normal is uniformly
// distributed over the sphere and whose offset lies between d1 and d2.
// Non-finite bounds fail with ErrNonFinite and leave p unchanged.
func (p *Plane) SetRandomPlane(rng *rand.Rand, d1, d2 float64) error {
	if !finite(d1, d2) {
		return ErrNonFinite
	}
	*p = Plane{normal: randomNormal(rng), offset: uniform(rng, d1, d2)}
	return nil
}

// FromPointAndNorm sets p to the plane through point facing norm.
func (p *Plane) FromPointAndNorm(point, norm Point) error {
	l := norm.Len()
	if !(l > DegenerateEpsilon) || math.IsInf(l, 0) {
		return ErrDegenerateNormal
	}
	n := norm.Div(l)
	d := -n.Dot(point)
	if !finite(point.X, point.Y, point.Z, d) {
		return ErrNonFinite
	}
	p.normal = n
	p.offset = d
	return nil
}

// Params returns the unit normal and offset.
func (p Plane) Params() (normal Point, offset float64) { return p.normal, p.offset }

// Distance returns the signed distance of pt from the plane. It is
// positive on the side the normal points to.
func (p Plane) Distance(pt Point) float64 {
	return p.normal.Dot(pt) + p.offset
}

// PointAndNorm returns the point of the plane closest to the origin
// together with the unit normal.
func (p Plane) PointAndNorm() (point, normal Point) {
	return p.normal.Mul(-p.offset), p.normal
}

// Equal reports whether p and o describe the same geometric plane.
// (n, d) and (-n, -d) are the same plane.
func (p Plane) Equal(o Plane) bool {
	if p.normal.EqualWithin(o.normal, PlaneEpsilon) && math.Abs(p.offset-o.offset) <= PlaneEpsilon {
		return true
	}
	return p.normal.EqualWithin(o.normal.Neg(), PlaneEpsilon) && math.Abs(p.offset+o.offset) <= PlaneEpsilon
}

func (p Plane) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", p.normal.X, p.normal.Y, p.normal.Z, p.offset)
}

type planeJSON struct {
	Normal Point
	Offset float64
}

func (p Plane) MarshalJSON() ([]byte, error) {
	return json.Marshal(planeJSON{Normal: p.normal, Offset: p.offset})
}

// UnmarshalJSON decodes and normalizes a plane, rejecting degenerate normals.
func (p *Plane) UnmarshalJSON(data []byte) error {
	var v planeJSON
	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}
	return p.SetPlane(v.Normal, v.Offset)
}
