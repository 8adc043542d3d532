/*
Package jobs turns experiment records into scheduler job scripts and hands
them to the batch scheduler.

# Generation

Generator.Generate is the local generation pipeline: load the cluster
profile and experiment records, expand the parameter grid, build one
command line per combination, substitute it into the scheduler template,
and write the result under a deterministic path:

	<root>/<project>/slurm_runs/runs/<cluster>/<experiment>/run_<index>.slurm

Indices are zero-padded wide enough for the combination count (minimum
four digits), so lexicographic file order always equals generation order,
including for sweeps of ten thousand jobs. Directory creation is
idempotent and colliding files are overwritten, never merged: regenerating
a sweep is a full deterministic replace.

Profile fields left unset fall back to conservative scheduler defaults
(debug partition, ten minutes, 4G, one CPU).

# Submission

Submitter.SubmitDir walks the generated scripts in order and runs one
sbatch per script, synchronously. Submission is deliberately sequential
with no batching: each script can fail independently, failures are
aggregated per script rather than aborting the loop, and nothing already
submitted is rolled back. The one exception is a missing sbatch binary,
which is reported once as a fatal configuration problem since every
remaining invocation would fail the same way.
*/
package jobs
