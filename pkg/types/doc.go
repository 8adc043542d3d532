/*
Package types defines the configuration records and value types shared by
every sweepctl package.

The records mirror the on-disk layout of a project:

	output/<project>/
	├── project.yaml                 ProjectConfig
	└── slurm_runs/
	    ├── clusters/<name>.yaml     ClusterProfile
	    ├── experiments/<exp>/
	    │   ├── config.yaml          ExperimentConfig
	    │   └── grid.yaml            GridConfig
	    └── runs/<cluster>/<exp>/    RenderedJob scripts

Two design points matter more than the field lists:

Ordered parameters. GridConfig and ExperimentConfig decode through
yaml.Node instead of Go maps because document key order is load-bearing.
Axis order fixes the enumeration order of grid combinations, which fixes
job indices; parameter order fixes the flag order of built commands. A map
would silently randomize both.

Schema version. ProjectConfig carries an explicit version field. Loaders
reject records with any version other than SchemaVersion rather than
guessing which directory convention an older file intended.
*/
package types
