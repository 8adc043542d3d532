package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/types"
)

const (
	// DefaultRoot is the workspace directory holding all project trees.
	DefaultRoot = "output"

	projectFile    = "project.yaml"
	runsTree       = "slurm_runs"
	clustersDir    = "clusters"
	experimentsDir = "experiments"
	runsDir        = "runs"
)

// Store loads and saves the configuration records of a workspace.
//
// A Store reads each record at most once per invocation and assumes no
// concurrent writers. Concurrent sweepctl invocations mutating the same
// project are not guarded by any lock; last write wins.
type Store struct {
	root string
}

// NewStore creates a store rooted at root (DefaultRoot when empty).
func NewStore(root string) *Store {
	if root == "" {
		root = DefaultRoot
	}
	return &Store{root: root}
}

// Root returns the workspace root directory.
func (s *Store) Root() string { return s.root }

// ProjectDir returns the directory holding a project's state.
func (s *Store) ProjectDir(project string) string {
	return filepath.Join(s.root, project)
}

// RunsDir returns the output directory for generated job scripts of one
// cluster/experiment pair.
func (s *Store) RunsDir(project, cluster, experiment string) string {
	return filepath.Join(s.ProjectDir(project), runsTree, runsDir, cluster, experiment)
}

// ExperimentDir returns the directory holding one experiment's records.
func (s *Store) ExperimentDir(project, experiment string) string {
	return filepath.Join(s.ProjectDir(project), runsTree, experimentsDir, experiment)
}

// InitProject creates the project tree and writes the project record.
func (s *Store) InitProject(cfg *types.ProjectConfig) error {
	if cfg.General.ProjectName == "" {
		return errdefs.Configf("project name must not be empty")
	}
	cfg.Version = types.SchemaVersion

	dir := s.ProjectDir(cfg.General.ProjectName)
	for _, sub := range []string{
		filepath.Join(dir, runsTree, clustersDir),
		filepath.Join(dir, runsTree, experimentsDir),
		filepath.Join(dir, runsTree, runsDir),
	} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return errors.Wrap(err, "create project tree")
		}
	}

	if err := s.SaveProject(cfg); err != nil {
		return err
	}
	logger := log.WithProject(cfg.General.ProjectName)
	logger.Info().Str("dir", dir).Msg("project initialized")
	return nil
}

// LoadProject reads and validates a project record.
func (s *Store) LoadProject(project string) (*types.ProjectConfig, error) {
	path := filepath.Join(s.ProjectDir(project), projectFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errdefs.Configf("project %q is not initialized (missing %s); run 'sweepctl init' first", project, path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read project record")
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errdefs.Configf("malformed project record %s: %v", path, err)
	}
	if cfg.Version != types.SchemaVersion {
		return nil, errdefs.Configf("project record %s has schema version %d, this build supports version %d", path, cfg.Version, types.SchemaVersion)
	}
	return &cfg, nil
}

// SaveProject writes the project record.
func (s *Store) SaveProject(cfg *types.ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode project record")
	}
	path := filepath.Join(s.ProjectDir(cfg.General.ProjectName), projectFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write project record")
	}
	return nil
}

// AddRemote registers a remote target under the given name. An existing
// target of the same name is replaced.
func (s *Store) AddRemote(project, name string, target types.RemoteTarget) error {
	if name == "" {
		return errdefs.Configf("remote name must not be empty")
	}
	cfg, err := s.LoadProject(project)
	if err != nil {
		return err
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]types.RemoteTarget)
	}
	cfg.Remotes[name] = target
	return s.SaveProject(cfg)
}

// RemoteNames returns the registered remote names, sorted.
func RemoteNames(cfg *types.ProjectConfig) []string {
	names := make([]string, 0, len(cfg.Remotes))
	for name := range cfg.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadClusterProfile reads a cluster profile record.
func (s *Store) LoadClusterProfile(project, cluster string) (*types.ClusterProfile, error) {
	path := filepath.Join(s.ProjectDir(project), runsTree, clustersDir, cluster+".yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errdefs.Configf("cluster profile not found at %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read cluster profile")
	}

	var profile types.ClusterProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, errdefs.Configf("malformed cluster profile %s: %v", path, err)
	}
	return &profile, nil
}

// SaveClusterProfile writes a cluster profile record.
func (s *Store) SaveClusterProfile(project, cluster string, profile *types.ClusterProfile) error {
	dir := filepath.Join(s.ProjectDir(project), runsTree, clustersDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create clusters directory")
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "encode cluster profile")
	}
	if err := os.WriteFile(filepath.Join(dir, cluster+".yaml"), data, 0o644); err != nil {
		return errors.Wrap(err, "write cluster profile")
	}
	return nil
}

// LoadExperiment reads an experiment's config and grid records.
func (s *Store) LoadExperiment(project, experiment string) (*types.ExperimentConfig, *types.GridConfig, error) {
	dir := s.ExperimentDir(project, experiment)

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgData, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return nil, nil, errdefs.Configf("experiment config not found at %s", cfgPath)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "read experiment config")
	}
	var expCfg types.ExperimentConfig
	if err := yaml.Unmarshal(cfgData, &expCfg); err != nil {
		return nil, nil, errdefs.Configf("malformed experiment config %s: %v", cfgPath, err)
	}
	if expCfg.Script == "" {
		return nil, nil, errdefs.Configf("experiment config %s is missing the required script key", cfgPath)
	}

	gridPath := filepath.Join(dir, "grid.yaml")
	gridData, err := os.ReadFile(gridPath)
	if os.IsNotExist(err) {
		return nil, nil, errdefs.Configf("experiment grid not found at %s", gridPath)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "read experiment grid")
	}
	var gridCfg types.GridConfig
	if err := yaml.Unmarshal(gridData, &gridCfg); err != nil {
		return nil, nil, errdefs.Configf("malformed experiment grid %s: %v", gridPath, err)
	}

	return &expCfg, &gridCfg, nil
}

// SaveExperiment writes an experiment's config and grid records.
func (s *Store) SaveExperiment(project, experiment string, cfg *types.ExperimentConfig, grid *types.GridConfig) error {
	dir := s.ExperimentDir(project, experiment)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create experiment directory")
	}

	cfgData, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode experiment config")
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), cfgData, 0o644); err != nil {
		return errors.Wrap(err, "write experiment config")
	}

	gridData, err := yaml.Marshal(grid)
	if err != nil {
		return errors.Wrap(err, "encode experiment grid")
	}
	if err := os.WriteFile(filepath.Join(dir, "grid.yaml"), gridData, 0o644); err != nil {
		return errors.Wrap(err, "write experiment grid")
	}
	return nil
}
