/*
Package grid turns a swept-parameter grid into concrete, runnable command
lines.

Expand enumerates the Cartesian product of a grid's value lists into total
parameter assignments. Order is deterministic and reproducible: axis order
comes from the grid record's document order, the first axis varies slowest,
and the nth invocation always yields the same nth combination. That
determinism is what makes job indices stable across regeneration runs.

	grid.yaml:            combinations (in order):
	  lr: [0.1, 0.01]       {lr: 0.1,  seed: 1}
	  seed: [1, 2]          {lr: 0.1,  seed: 2}
	                        {lr: 0.01, seed: 1}
	                        {lr: 0.01, seed: 2}

Two edge cases are contractual. An empty grid expands to exactly one empty
combination, so a run with nothing swept still produces one job. An axis
with an empty value list is a configuration error rejected before
expansion; the alternative (an empty product) would silently generate zero
jobs.

BuildCommand renders a base command plus ordered parameter sets into a
single command line using long-form flags. Boolean parameters follow flag
conventions: true is a bare flag, false disappears. The "script" key is
routing metadata and is never rendered.

	BuildCommand("train", experiment.Params, combo.Params)
	// "train --batch 32 --lr 0.1 --seed 1"
*/
package grid
