package coord

import (
	"math"
	"math/rand"
)

// uniform returns a value in the closed range spanned by a and b,
// whichever order they are given in.
func uniform(rng *rand.Rand, a, b float64) float64 {
	if a > b {
		a, b = b, a
	}
	return a + rng.Float64()*(b-a)
}

// randomNormal returns a unit vector distributed uniformly over the sphere.
//
// Three independent gaussians are normalized; the rare near-zero draw is
// rejected.
func randomNormal(rng *rand.Rand) Point {
	for {
		p := Point{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		l := p.Len()
		if l > 1e-6 {
			return p.Div(l)
		}
	}
}

// basis returns two unit vectors that together with the unit vector n
// form a right-handed orthonormal basis.
func basis(n Point) (u, v Point) {
	// cross with the axis least aligned with n
	axis := Point{X: 1}
	if math.Abs(n.Y) < math.Abs(n.X) && math.Abs(n.Y) <= math.Abs(n.Z) {
		axis = Point{Y: 1}
	} else if math.Abs(n.Z) < math.Abs(n.X) {
		axis = Point{Z: 1}
	}
	u = n.Cross(axis)
	u = u.Div(u.Len())
	v = n.Cross(u)
	return u, v
}

// tilted returns the unit vector at angle theta from the unit vector n,
// rotated phi radians around it.
func tilted(n Point, theta, phi float64) Point {
	u, v := basis(n)
	s := math.Sin(theta)
	return n.Mul(math.Cos(theta)).
		Add(u.Mul(s * math.Cos(phi))).
		Add(v.Mul(s * math.Sin(phi)))
}

// randomInCone returns a unit vector uniformly distributed over the
// spherical cap of half-angle maxAng around the unit vector n.
func randomInCone(rng *rand.Rand, n Point, maxAng float64) Point {
	maxAng = math.Min(math.Abs(maxAng), math.Pi)
	cos := uniform(rng, math.Cos(maxAng), 1)
	theta := math.Acos(math.Max(-1, math.Min(1, cos)))
	return tilted(n, theta, rng.Float64()*2*math.Pi)
}
