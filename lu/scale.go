package lu

import (
	"math"

	"github.com/sparsekit/sparsekit/csc"
)

// scaleRows fills rs with one scale factor per row of a: the row's largest
// absolute value (ScaleMax) or the sum of its absolute values (ScaleSum).
// Empty rows get the factor 1 so they never divide entries by zero.
func scaleRows(a *csc.Matrix, mode Scaling, rs []float64) {
	for i := range rs {
		rs[i] = 0
	}

	for j := 0; j < a.Cols(); j++ {
		rows, vals := a.Col(j)
		for p, i := range rows {
			v := math.Abs(vals[p])
			switch mode {
			case ScaleSum:
				rs[i] += v
			default:
				rs[i] = math.Max(rs[i], v)
			}
		}
	}

	for i := range rs {
		if rs[i] == 0 {
			rs[i] = 1
		}
	}
}
