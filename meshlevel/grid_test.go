package meshlevel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mastercactapus/planefunc/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridOptions_Points(t *testing.T) {
	opt := GridOptions{X: 1, Y: 2, DistanceX: 10, DistanceY: 10, Granularity: 7.5}

	pts, err := opt.Points()
	require.NoError(t, err)
	assert.Equal(t, []coord.Point{
		{X: 1, Y: 2}, {X: 6, Y: 2}, {X: 11, Y: 2},
		{X: 11, Y: 7}, {X: 6, Y: 7}, {X: 1, Y: 7},
		{X: 1, Y: 12}, {X: 6, Y: 12}, {X: 11, Y: 12},
	}, pts)

	for i := 1; i < len(pts); i++ {
		assert.True(t, pts[i-1].DistanceXY(pts[i].X, pts[i].Y) <= opt.Granularity)
	}
}

func TestGridOptions_PointsLine(t *testing.T) {
	pts, err := GridOptions{DistanceX: 4, Granularity: 2}.Points()
	require.NoError(t, err)
	require.Len(t, pts, 4)
	for _, p := range pts {
		assert.Equal(t, 0.0, p.Y)
		assert.False(t, math.IsNaN(p.X))
	}
}

func TestGridOptions_Invalid(t *testing.T) {
	_, err := GridOptions{DistanceX: 1, DistanceY: 1}.Points()
	assert.Error(t, err)

	_, err = GridOptions{DistanceX: -1, Granularity: 1}.Points()
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	f, err := coord.NewPlaneFunctionNormal(coord.Point{X: -1, Y: 2, Z: 4}, 3)
	require.NoError(t, err)

	opt := GridOptions{X: -5, Y: -5, DistanceX: 10, DistanceY: 10, Granularity: 1}
	pts, err := Sample(FunctionOffsetter{f}, opt)
	require.NoError(t, err)

	all, err := opt.Points()
	require.NoError(t, err)
	require.Len(t, pts, len(all))
	for _, p := range pts {
		assert.InDelta(t, 0, f.Distance(p), 1e-9)
	}

	mesh, err := NewMesh(risingPoints)
	require.NoError(t, err)
	pts, err = Sample(mesh, GridOptions{X: -750, Y: -500, DistanceX: 100, Granularity: 20})
	require.NoError(t, err)
	assert.NotEmpty(t, pts)
	for _, p := range pts {
		assert.True(t, p.X >= -700-coord.Epsilon, "sample outside mesh: %v", p)
		assert.InDelta(t, -80+(p.X+700)*0.3, p.Z, 1e-9)
	}
}

func TestTerrain(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base, err := coord.NewPlaneFunctionNormal(coord.Point{Z: 1}, -1) // z = 1
	require.NoError(t, err)

	opt := TerrainOptions{
		GridOptions: GridOptions{DistanceX: 10, DistanceY: 10, Granularity: 1},
	}

	pts, err := Terrain(rng, base, opt)
	require.NoError(t, err)
	for _, p := range pts {
		assert.InDelta(t, 1, p.Z, 1e-9)
	}

	opt.DeltaZ = 0.5
	opt.DeltaAngle = 0.01
	pts, err = Terrain(rng, base, opt)
	require.NoError(t, err)
	var moved bool
	for _, p := range pts {
		// at most 0.5 at the center plus tan(0.01) per unit of distance
		assert.InDelta(t, 1, p.Z, 0.5+0.08)
		if math.Abs(p.Z-1) > 1e-6 {
			moved = true
		}
	}
	assert.True(t, moved)

	mesh, err := NewMesh(pts)
	require.NoError(t, err)
	ok, z := mesh.OffsetZ(5, 5)
	assert.True(t, ok)
	assert.InDelta(t, 1, z, 0.58)
}

func TestGridOptions_Size(t *testing.T) {
	opt := GridOptions{DistanceX: 10, DistanceY: 10, Granularity: 7.5}
	n, err := opt.Size()
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	_, err = GridOptions{DistanceX: 1e6, DistanceY: 1e6, Granularity: 1}.Size()
	assert.Equal(t, ErrGridTooLarge, err)

	// counts that would overflow int
	_, err = GridOptions{DistanceX: 1e300, DistanceY: 1e300, Granularity: 1}.Size()
	assert.Equal(t, ErrGridTooLarge, err)
	_, err = GridOptions{DistanceX: 1, Granularity: 1e-320}.Points()
	assert.Equal(t, ErrGridTooLarge, err)

	_, err = GridOptions{}.Size()
	assert.Error(t, err)
}

func TestGridOptions_NonFinite(t *testing.T) {
	bad := []GridOptions{
		{DistanceX: math.NaN(), Granularity: 1},
		{DistanceY: math.Inf(1), Granularity: 1},
		{X: math.NaN(), DistanceX: 1, Granularity: 1},
		{Y: math.Inf(-1), DistanceX: 1, Granularity: 1},
		{DistanceX: 1, Granularity: math.Inf(1)},
		{DistanceX: 1, Granularity: math.NaN()},
	}
	for _, opt := range bad {
		_, err := opt.Size()
		assert.Error(t, err, "%+v", opt)
		_, err = opt.Points()
		assert.Error(t, err, "%+v", opt)
	}
}

func TestTerrain_Invalid(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	base := coord.DefaultPlaneFunction()
	opt := TerrainOptions{
		GridOptions: GridOptions{DistanceX: 2, DistanceY: 2, Granularity: 1},
		DeltaZ:      1,
		DeltaAngle:  math.NaN(),
	}
	_, err := Terrain(rng, base, opt)
	assert.Equal(t, coord.ErrInvalidAngle, err)

	opt.DeltaAngle = 0.1
	opt.DeltaZ = math.Inf(1)
	_, err = Terrain(rng, base, opt)
	assert.Equal(t, coord.ErrNonFinite, err)
}
