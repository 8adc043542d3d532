package grid

import (
	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/types"
)

// Expand computes the Cartesian product of the grid's value lists.
//
// Combinations are enumerated in the standard product order induced by axis
// order: the first axis varies slowest, the last fastest. Every combination
// is total over all axes. An empty grid yields exactly one combination (the
// empty assignment), so a sweep with no swept parameters still produces one
// job.
//
// An axis with an empty value list is rejected as a configuration error:
// an empty product would silently yield zero jobs.
func Expand(g types.GridConfig) ([]types.Combination, error) {
	for _, axis := range g.Axes {
		if len(axis.Values) == 0 {
			return nil, errdefs.Configf("grid axis %q has an empty value list", axis.Name)
		}
	}

	total := 1
	for _, axis := range g.Axes {
		total *= len(axis.Values)
	}

	combos := make([]types.Combination, 0, total)
	indices := make([]int, len(g.Axes))
	for n := 0; n < total; n++ {
		params := make(types.Params, len(g.Axes))
		for i, axis := range g.Axes {
			params[i] = types.Param{Name: axis.Name, Value: axis.Values[indices[i]]}
		}
		combos = append(combos, types.Combination{Params: params})

		// Odometer step: last axis varies fastest.
		for i := len(indices) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(g.Axes[i].Values) {
				break
			}
			indices[i] = 0
		}
	}
	return combos, nil
}
