package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calligo/sweepctl/pkg/config"
	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/types"
)

func init() {
	log.Init(log.Config{Level: log.ErrorLevel})
}

func fixtureStore(t *testing.T) *config.Store {
	t.Helper()
	store := config.NewStore(t.TempDir())

	require.NoError(t, store.InitProject(&types.ProjectConfig{
		General: types.GeneralConfig{ProjectName: "demo"},
		Test:    types.TestConfig{RepoURL: "https://example.com/r.git", RunCommand: "true"},
	}))
	require.NoError(t, store.SaveClusterProfile("demo", "alps", &types.ClusterProfile{
		Account:   "proj-42",
		Partition: "gpu",
		Time:      "01:00:00",
		GPUType:   "a100",
		NumGPUs:   1,
		CPUs:      8,
		Memory:    "32G",
		Modules:   []string{"cuda/12.1"},
	}))

	dir := store.ExperimentDir("demo", "sweep1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("script: train\nbatch: 32\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grid.yaml"),
		[]byte("lr: [0.1, 0.01]\nseed: [1, 2]\n"), 0o644))

	return store
}

func TestGenerate_EndToEnd(t *testing.T) {
	store := fixtureStore(t)
	gen := NewGenerator(store)

	jobs, err := gen.Generate("demo", "alps", "sweep1")
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	// First grid key varies slowest.
	assert.Equal(t, "train --batch 32 --lr 0.1 --seed 1", jobs[0].Command)
	assert.Equal(t, "train --batch 32 --lr 0.1 --seed 2", jobs[1].Command)
	assert.Equal(t, "train --batch 32 --lr 0.01 --seed 1", jobs[2].Command)
	assert.Equal(t, "train --batch 32 --lr 0.01 --seed 2", jobs[3].Command)

	assert.Equal(t, "0000", jobs[0].Index)
	assert.Equal(t, "0003", jobs[3].Index)

	// Scripts land under runs/<cluster>/<experiment>.
	runsDir := store.RunsDir("demo", "alps", "sweep1")
	entries, err := os.ReadDir(runsDir)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "run_0000.slurm", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(runsDir, "run_0000.slurm"))
	require.NoError(t, err)
	script := string(data)
	assert.Contains(t, script, "--job-name=sweep1-0")
	assert.Contains(t, script, "--account=proj-42")
	assert.Contains(t, script, "--partition=gpu")
	assert.Contains(t, script, "gpu:a100:1")
	assert.Contains(t, script, "module load cuda/12.1")
	assert.Contains(t, script, "train --batch 32 --lr 0.1 --seed 1")
	assert.NotContains(t, script, "{{", "no unresolved placeholders expected")
}

func TestGenerate_ProfileDefaults(t *testing.T) {
	store := fixtureStore(t)
	require.NoError(t, store.SaveClusterProfile("demo", "bare", &types.ClusterProfile{}))

	gen := NewGenerator(store)
	jobs, err := gen.Generate("demo", "bare", "sweep1")
	require.NoError(t, err)

	script := jobs[0].Script
	assert.Contains(t, script, "--account=default_account")
	assert.Contains(t, script, "--partition=debug")
	assert.Contains(t, script, "--time=00:10:00")
	assert.Contains(t, script, "--mem=4G")
	assert.Contains(t, script, "--cpus-per-task=1")
}

func TestGenerate_EmptyGridYieldsOneJob(t *testing.T) {
	store := fixtureStore(t)
	gridPath := filepath.Join(store.ExperimentDir("demo", "sweep1"), "grid.yaml")
	require.NoError(t, os.WriteFile(gridPath, []byte("{}\n"), 0o644))

	gen := NewGenerator(store)
	jobs, err := gen.Generate("demo", "alps", "sweep1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "train --batch 32", jobs[0].Command)
}

func TestGenerate_CustomTemplate(t *testing.T) {
	store := fixtureStore(t)
	gen := NewGenerator(store)
	gen.Template = "#!/bin/sh\n# {{JOB_NAME}}\n{{CMD}}\n"

	jobs, err := gen.Generate("demo", "alps", "sweep1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(jobs[0].Script, "#!/bin/sh\n# sweep1-0\n"))
}

func TestGenerate_Regenerate(t *testing.T) {
	store := fixtureStore(t)
	gen := NewGenerator(store)

	first, err := gen.Generate("demo", "alps", "sweep1")
	require.NoError(t, err)
	second, err := gen.Generate("demo", "alps", "sweep1")
	require.NoError(t, err)

	// Stable indices and content across runs for the same grid ordering.
	assert.Equal(t, first, second)
}
