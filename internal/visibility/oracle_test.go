package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prm-planner/internal/geom"
)

func mustOracle(t *testing.T, rects ...geom.Rect) *Oracle {
	t.Helper()
	o, err := New(rects)
	require.NoError(t, err)
	return o
}

func TestNew_RejectsInvalidObstacle(t *testing.T) {
	_, err := New([]geom.Rect{{XMin: 0, XMax: 1, YMin: 0, YMax: 1}, {XMin: 5, XMax: 4, YMin: 0, YMax: 1}})
	require.ErrorIs(t, err, geom.ErrInvalidObstacle)
	require.Contains(t, err.Error(), "obstacle 1")
}

func TestOracle_Clear(t *testing.T) {
	o := mustOracle(t, geom.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10})

	assert.False(t, o.Clear(geom.Pt(5, 5)))
	assert.False(t, o.Clear(geom.Pt(0, 5)), "boundary is not clear")
	assert.False(t, o.Clear(geom.Pt(10, 10)), "corner is not clear")
	assert.True(t, o.Clear(geom.Pt(10.5, 10)))
	assert.True(t, o.Clear(geom.Pt(-5, 5)))
}

func TestOracle_VisibleThroughObstacle(t *testing.T) {
	o := mustOracle(t, geom.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10})

	src, dest := geom.Pt(-5, 5), geom.Pt(15, 5)
	assert.True(t, o.SegmentCrossesRect(geom.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10}, src, dest))
	assert.False(t, o.Visible(src, dest))
	assert.True(t, o.Visible(geom.Pt(-5, 11), geom.Pt(15, 11)))
}

func TestOracle_NoObstacles(t *testing.T) {
	o := mustOracle(t)

	assert.True(t, o.Clear(geom.Pt(0, 0)))
	assert.True(t, o.Visible(geom.Pt(0, 0), geom.Pt(3, 4)))
	assert.Empty(t, o.Obstacles())
}

func TestOracle_VisibleRequiresClearEndpoints(t *testing.T) {
	o := mustOracle(t, geom.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10})

	assert.False(t, o.Visible(geom.Pt(5, 5), geom.Pt(5, 6)), "both inside")
	assert.False(t, o.Visible(geom.Pt(-1, 0), geom.Pt(0, 0)), "ends on the boundary")
}

func TestOracle_DegenerateObstacle(t *testing.T) {
	// A wall of zero thickness still blocks
	o := mustOracle(t, geom.Rect{XMin: 5, XMax: 5, YMin: 0, YMax: 10})

	assert.False(t, o.Visible(geom.Pt(0, 5), geom.Pt(10, 5)))
	assert.False(t, o.Clear(geom.Pt(5, 3)))
	assert.True(t, o.Visible(geom.Pt(0, 11), geom.Pt(10, 11)))
}

func TestOracle_VisibleIsSymmetric(t *testing.T) {
	o := mustOracle(t,
		geom.Rect{XMin: 6, XMax: 13, YMin: 14, YMax: 22},
		geom.Rect{XMin: 4, XMax: 12, YMin: 0, YMax: 8},
		geom.Rect{XMin: 14, XMax: 22, YMin: 4, YMax: 10},
	)

	for ax := 0.0; ax <= 22; ax += 3 {
		for ay := 0.0; ay <= 22; ay += 3 {
			for bx := 1.0; bx <= 22; bx += 5 {
				for by := 2.0; by <= 22; by += 5 {
					a, b := geom.Pt(ax, ay), geom.Pt(bx, by)
					require.Equal(t, o.Visible(a, b), o.Visible(b, a), "%v %v", a, b)
				}
			}
		}
	}
}

func TestOracle_IndexMatchesLinearScan(t *testing.T) {
	var rects []geom.Rect
	for i := 0.0; i < 8; i++ {
		rects = append(rects, geom.Rect{XMin: i * 5, XMax: i*5 + 2, YMin: i * 3, YMax: i*3 + 4})
	}
	o := mustOracle(t, rects...)

	linearVisible := func(a, b geom.Point) bool {
		for _, r := range rects {
			if r.Contains(a) || r.Contains(b) || geom.SegmentCrossesRect(r, a, b) {
				return false
			}
		}
		return true
	}

	for ax := 0.0; ax <= 40; ax += 4 {
		for ay := 0.0; ay <= 30; ay += 3 {
			a, b := geom.Pt(ax, ay), geom.Pt(40-ay, ax*0.75)
			require.Equal(t, linearVisible(a, b), o.Visible(a, b), "%v %v", a, b)
		}
	}
}

func TestOracle_TouchingAtLargeCoordinates(t *testing.T) {
	for _, base := range []float64{0, 1e7, 5e7, 1e12, -5e7} {
		r := geom.Rect{XMin: base, XMax: base + 10, YMin: base, YMax: base + 10}
		o := mustOracle(t, r)

		onLeftEdge := geom.Pt(base, base+5)
		assert.False(t, o.Clear(onLeftEdge), "base %g: boundary point", base)
		assert.False(t, o.Clear(geom.Pt(base+10, base+10)), "base %g: corner", base)
		assert.True(t, o.Clear(geom.Pt(base-5, base+5)), "base %g: outside", base)

		alongTop := [2]geom.Point{geom.Pt(base-5, base+10), geom.Pt(base+15, base+10)}
		assert.False(t, o.Visible(alongTop[0], alongTop[1]), "base %g: along top edge", base)
		assert.True(t, geom.SegmentCrossesRect(r, alongTop[0], alongTop[1]), "base %g: linear", base)

		above := [2]geom.Point{geom.Pt(base-5, base+20), geom.Pt(base+15, base+20)}
		assert.True(t, o.Visible(above[0], above[1]), "base %g: above", base)
	}
}
