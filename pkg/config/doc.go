/*
Package config loads and saves the per-project configuration records.

A Store is rooted at a workspace directory (default "output") and owns the
project tree layout:

	<root>/<project>/
	├── project.yaml
	└── slurm_runs/
	    ├── clusters/<cluster>.yaml
	    ├── experiments/<exp>/{config.yaml, grid.yaml}
	    └── runs/<cluster>/<exp>/

All records are yaml. Missing or malformed records surface as
configuration errors naming the missing path, raised before any external
process runs. Project records carry an explicit schema version; loading a
record with a different version fails instead of guessing the layout.

Locking is intentionally absent: each invocation reads records once up
front and only the configuration commands write. Concurrent invocations
mutating the same project race with last-write-wins semantics.
*/
package config
