package jobs

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/config"
	"github.com/calligo/sweepctl/pkg/grid"
	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/template"
	"github.com/calligo/sweepctl/pkg/types"
)

// Resource defaults applied when a cluster profile leaves a field unset.
const (
	defaultAccount   = "default_account"
	defaultPartition = "debug"
	defaultTime      = "00:10:00"
	defaultMemory    = "4G"
	defaultCPUs      = 1
)

// Generator expands an experiment grid into rendered scheduler scripts.
type Generator struct {
	Store *config.Store

	// Template overrides the built-in scheduler template when non-empty.
	Template string

	logger zerolog.Logger
}

// NewGenerator creates a generator over the given store.
func NewGenerator(store *config.Store) *Generator {
	return &Generator{
		Store:  store,
		logger: log.WithComponent("generator"),
	}
}

// Generate loads the cluster profile and experiment records, expands the
// grid, builds one command per combination, renders the scheduler script,
// and writes run_<index>.slurm files into the runs directory for the
// cluster/experiment pair. The rendered jobs are returned in generation
// order.
func (g *Generator) Generate(project, cluster, experiment string) ([]types.RenderedJob, error) {
	profile, err := g.Store.LoadClusterProfile(project, cluster)
	if err != nil {
		return nil, err
	}
	expCfg, gridCfg, err := g.Store.LoadExperiment(project, experiment)
	if err != nil {
		return nil, err
	}

	combos, err := grid.Expand(*gridCfg)
	if err != nil {
		return nil, err
	}

	tmpl := g.Template
	if tmpl == "" {
		tmpl = template.DefaultSlurm
	}

	jobs := make([]types.RenderedJob, 0, len(combos))
	for i, combo := range combos {
		command := grid.BuildCommand(expCfg.Script, expCfg.Params, combo.Params)
		index := FormatIndex(i, len(combos))
		vars := templateVars(profile, fmt.Sprintf("%s-%d", experiment, i), command)
		jobs = append(jobs, types.RenderedJob{
			Index:   index,
			Command: command,
			Script:  template.Render(tmpl, vars),
		})
	}

	writer := &Writer{Dir: g.Store.RunsDir(project, cluster, experiment)}
	paths, err := writer.Write(jobs)
	if err != nil {
		return nil, err
	}

	g.logger.Info().
		Str("project", project).
		Str("cluster", cluster).
		Str("experiment", experiment).
		Int("jobs", len(paths)).
		Str("dir", writer.Dir).
		Msg("generated job scripts")
	return jobs, nil
}

func templateVars(profile *types.ClusterProfile, jobName, command string) map[string]interface{} {
	vars := map[string]interface{}{
		"JOB_NAME":  jobName,
		"ACCOUNT":   orDefault(profile.Account, defaultAccount),
		"PARTITION": orDefault(profile.Partition, defaultPartition),
		"TIME":      orDefault(profile.Time, defaultTime),
		"GPU_TYPE":  profile.GPUType,
		"NUM_GPUS":  profile.NumGPUs,
		"CPUS":      profile.CPUs,
		"MEMORY":    orDefault(profile.Memory, defaultMemory),
		"MODULES":   strings.Join(profile.Modules, " "),
		"CMD":       command,
	}
	if profile.CPUs == 0 {
		vars["CPUS"] = defaultCPUs
	}
	return vars
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
