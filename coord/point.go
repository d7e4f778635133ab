package coord

import (
	"math"
)

// Point is a position or direction in 3D space.
type Point struct{ X, Y, Z float64 }

func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y && p.Z == b.Z
}

// EqualWithin reports whether every component of p is within eps of b.
func (p Point) EqualWithin(b Point, eps float64) bool {
	return math.Abs(p.X-b.X) <= eps && math.Abs(p.Y-b.Y) <= eps && math.Abs(p.Z-b.Z) <= eps
}

func (p Point) Cross(op Point) Point {
	return Point{
		p.Y*op.Z - p.Z*op.Y,
		p.Z*op.X - p.X*op.Z,
		p.X*op.Y - p.Y*op.X,
	}
}
func (p Point) Dot(op Point) float64 {
	return p.X*op.X + p.Y*op.Y + p.Z*op.Z
}
func (p Point) Mul(val float64) Point {
	p.X *= val
	p.Y *= val
	p.Z *= val
	return p
}

func (p Point) Div(val float64) Point {
	p.X /= val
	p.Y /= val
	p.Z /= val
	return p
}

// Neg returns p pointing the opposite way.
func (p Point) Neg() Point {
	return Point{-p.X, -p.Y, -p.Z}
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	p.Z += target.Z
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	p.Z -= target.Z
	return p
}

// Len returns the euclidean length of p.
func (p Point) Len() float64 {
	return math.Sqrt(p.Dot(p))
}

// Angle returns the angle in radians between p and op.
//
// The result is in [0, pi]; it is NaN if either vector is zero.
func (p Point) Angle(op Point) float64 {
	cos := p.Dot(op) / (p.Len() * op.Len())
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// DistanceXY will return the 2D distance to p from (x,y).
func (p Point) DistanceXY(x, y float64) float64 {
	return math.Sqrt(math.Pow(x-p.X, 2) + math.Pow(y-p.Y, 2))
}
