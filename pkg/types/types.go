package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the project record version this build reads and writes.
// Loaders reject any other value instead of guessing the on-disk layout.
const SchemaVersion = 1

// ProjectConfig is the single source of truth for a project. It is created
// on project initialization and mutated only by configuration commands.
type ProjectConfig struct {
	Version int                     `yaml:"version"`
	General GeneralConfig           `yaml:"general"`
	Test    TestConfig              `yaml:"test"`
	Remotes map[string]RemoteTarget `yaml:"remotes,omitempty"`
}

// GeneralConfig holds project identity.
type GeneralConfig struct {
	ProjectName string `yaml:"project_name"`
}

// TestConfig describes how the project is fetched and exercised in a
// container.
type TestConfig struct {
	RepoURL        string       `yaml:"repo_url"`
	DatasetCommand string       `yaml:"dataset_command,omitempty"`
	RunCommand     string       `yaml:"run_command"`
	GPUs           bool         `yaml:"gpus"`
	TrackingMode   TrackingMode `yaml:"tracking_mode,omitempty"`
}

// TrackingMode selects how experiment tracking is threaded into executed
// commands.
type TrackingMode string

const (
	TrackingDisabled TrackingMode = "disabled"
	TrackingOffline  TrackingMode = "offline"
	TrackingOnline   TrackingMode = "online"
)

// RemoteTarget is a named, reachable host plus the path convention used for
// syncing and remote execution. Identity is the map key in ProjectConfig;
// uniqueness is enforced by the map.
type RemoteTarget struct {
	Host           string   `yaml:"host"`
	User           string   `yaml:"user"`
	Port           int      `yaml:"port"`
	RemoteBasePath string   `yaml:"remote_base_path"`
	InitCommands   []string `yaml:"init_commands,omitempty"`
}

// Addr returns the user@host form used by ssh and rsync.
func (t RemoteTarget) Addr() string {
	return fmt.Sprintf("%s@%s", t.User, t.Host)
}

// ClusterProfile holds the scheduler resource parameters for one cluster.
// Profiles are read-only once created; many experiments may share one.
type ClusterProfile struct {
	Account   string        `yaml:"account,omitempty"`
	Partition string        `yaml:"partition,omitempty"`
	Time      string        `yaml:"time,omitempty"`
	GPUType   string        `yaml:"gpu_type,omitempty"`
	NumGPUs   int           `yaml:"num_gpus,omitempty"`
	CPUs      int           `yaml:"cpus,omitempty"`
	Memory    string        `yaml:"memory,omitempty"`
	Modules   []string      `yaml:"modules,omitempty"`
	Remote    *RemoteTarget `yaml:"remote,omitempty"`
}

// Param is one named parameter value. Parameters travel in slices rather
// than maps because document order is significant for job indexing and
// flag rendering.
type Param struct {
	Name  string
	Value interface{}
}

// Params is an ordered parameter list.
type Params []Param

// ExperimentConfig is a base command plus fixed parameters shared by every
// job of a sweep. The record is a flat yaml mapping with a required
// "script" key; all other keys become fixed parameters, in document order.
type ExperimentConfig struct {
	Script string
	Params Params
}

// UnmarshalYAML decodes the flat experiment mapping, preserving key order.
func (e *ExperimentConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("experiment record must be a mapping, got %s", nodeKind(value))
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		if key == "script" {
			if err := value.Content[i+1].Decode(&e.Script); err != nil {
				return fmt.Errorf("decode script: %w", err)
			}
			continue
		}
		var v interface{}
		if err := value.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("decode parameter %q: %w", key, err)
		}
		e.Params = append(e.Params, Param{Name: key, Value: v})
	}
	return nil
}

// MarshalYAML emits the flat mapping back in the same order.
func (e ExperimentConfig) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if err := appendPair(node, "script", e.Script); err != nil {
		return nil, err
	}
	for _, p := range e.Params {
		if err := appendPair(node, p.Name, p.Value); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// GridAxis is one swept parameter and its ordered candidate values.
type GridAxis struct {
	Name   string
	Values []interface{}
}

// GridConfig maps parameter names to candidate value lists. Axis order is
// the document order of the grid record and is significant: it fixes the
// enumeration order of combinations, so job indices are reproducible.
type GridConfig struct {
	Axes []GridAxis
}

// UnmarshalYAML decodes the grid mapping, preserving key order.
func (g *GridConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("grid record must be a mapping, got %s", nodeKind(value))
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		var vals []interface{}
		if err := value.Content[i+1].Decode(&vals); err != nil {
			return fmt.Errorf("decode grid axis %q: %w", key, err)
		}
		g.Axes = append(g.Axes, GridAxis{Name: key, Values: vals})
	}
	return nil
}

// MarshalYAML emits the grid mapping back in axis order.
func (g GridConfig) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, a := range g.Axes {
		if err := appendPair(node, a.Name, a.Values); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// Combination is one fully-specified assignment of values to all grid
// parameters, ordered by grid axis order. Every axis is present; partial
// combinations are never produced.
type Combination struct {
	Params Params
}

// RenderedJob is one generated job: a zero-padded index stable across runs
// for the same grid ordering, the fully built command line, and the
// rendered scheduler script. Jobs are created fresh on every generation
// run and never mutated.
type RenderedJob struct {
	Index   string
	Command string
	Script  string
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

func appendPair(node *yaml.Node, key string, value interface{}) error {
	k := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	v := &yaml.Node{}
	if err := v.Encode(value); err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	node.Content = append(node.Content, k, v)
	return nil
}
