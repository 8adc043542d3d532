package remote

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/types"
)

func init() {
	log.Init(log.Config{Level: log.ErrorLevel})
}

// stubTool installs a fake binary on PATH that appends its argv to a log
// file and exits with the given code.
func stubTool(t *testing.T, binDir, name, argvLog string, exitCode int) {
	t.Helper()
	script := "#!/bin/sh\necho \"$@\" >> " + argvLog + "\nexit " + strconv.Itoa(exitCode) + "\n"
	if err := os.WriteFile(filepath.Join(binDir, name), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
}

func testTarget() types.RemoteTarget {
	return types.RemoteTarget{
		Host:           "hpc.example.com",
		User:           "alice",
		Port:           2222,
		RemoteBasePath: "/scratch/alice",
		InitCommands:   []string{"source env.sh"},
	}
}

func readArgv(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestExecutor_Command(t *testing.T) {
	binDir := t.TempDir()
	argvLog := filepath.Join(t.TempDir(), "ssh.log")
	stubTool(t, binDir, "ssh", argvLog, 0)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	run := runner.New()
	run.Out = &bytes.Buffer{}
	exec := NewExecutor(run)

	err := exec.Command(context.Background(), testTarget(), "run.sh")
	require.NoError(t, err)

	lines := readArgv(t, argvLog)
	require.Len(t, lines, 1)
	argv := lines[0]
	assert.Contains(t, argv, "alice@hpc.example.com")
	assert.Contains(t, argv, "-p 2222")
	assert.Contains(t, argv, "StrictHostKeyChecking=no")
	// Init commands chained ahead of the target command.
	assert.Contains(t, argv, "source env.sh && run.sh")
}

func TestExecutor_RemoteExitCodeSurfaced(t *testing.T) {
	binDir := t.TempDir()
	argvLog := filepath.Join(t.TempDir(), "ssh.log")
	stubTool(t, binDir, "ssh", argvLog, 42)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	run := runner.New()
	run.Out = &bytes.Buffer{}
	exec := NewExecutor(run)

	err := exec.Command(context.Background(), testTarget(), "run.sh")
	require.Error(t, err)
	assert.True(t, errdefs.IsExec(err))
	assert.Equal(t, 42, errdefs.ExitCode(err), "the exact remote code must surface")
}

func TestExecutor_SSHMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	run := runner.New()
	run.Out = &bytes.Buffer{}
	exec := NewExecutor(run)

	err := exec.Command(context.Background(), testTarget(), "run.sh")
	assert.True(t, errdefs.IsNotFound(err), "missing ssh binary is a distinct configuration error")
}

func TestSyncer_Project(t *testing.T) {
	binDir := t.TempDir()
	logDir := t.TempDir()
	sshLog := filepath.Join(logDir, "ssh.log")
	rsyncLog := filepath.Join(logDir, "rsync.log")
	stubTool(t, binDir, "ssh", sshLog, 0)
	stubTool(t, binDir, "rsync", rsyncLog, 0)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo"), 0o755))

	run := runner.New()
	run.Out = &bytes.Buffer{}
	sync := NewSyncer(run, NewExecutor(run), root)

	require.NoError(t, sync.Project(context.Background(), testTarget(), "demo"))

	// Destination directory is created before the transfer.
	sshLines := readArgv(t, sshLog)
	require.Len(t, sshLines, 1)
	assert.Contains(t, sshLines[0], "mkdir -p /scratch/alice")

	rsyncLines := readArgv(t, rsyncLog)
	require.Len(t, rsyncLines, 1)
	assert.Contains(t, rsyncLines[0], "-az")
	assert.Contains(t, rsyncLines[0], filepath.Join(root, "demo"))
	assert.Contains(t, rsyncLines[0], "alice@hpc.example.com:/scratch/alice/")
	assert.Contains(t, rsyncLines[0], "ssh -p 2222")
}

// A second sync of unchanged local content is the identical transfer-tool
// invocation, which rsync resolves to a zero-payload no-op.
func TestSyncer_Idempotent(t *testing.T) {
	binDir := t.TempDir()
	logDir := t.TempDir()
	stubTool(t, binDir, "ssh", filepath.Join(logDir, "ssh.log"), 0)
	rsyncLog := filepath.Join(logDir, "rsync.log")
	stubTool(t, binDir, "rsync", rsyncLog, 0)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo"), 0o755))

	run := runner.New()
	run.Out = &bytes.Buffer{}
	sync := NewSyncer(run, NewExecutor(run), root)

	require.NoError(t, sync.Project(context.Background(), testTarget(), "demo"))
	require.NoError(t, sync.Project(context.Background(), testTarget(), "demo"))

	lines := readArgv(t, rsyncLog)
	require.Len(t, lines, 2)
	assert.Equal(t, lines[0], lines[1], "identical inputs must produce identical transfers")
}

func TestSyncer_MissingLocalSourceIsNotFatal(t *testing.T) {
	binDir := t.TempDir()
	stubTool(t, binDir, "ssh", filepath.Join(t.TempDir(), "ssh.log"), 0)
	rsyncLog := filepath.Join(t.TempDir(), "rsync.log")
	stubTool(t, binDir, "rsync", rsyncLog, 0)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	run := runner.New()
	run.Out = &bytes.Buffer{}
	sync := NewSyncer(run, NewExecutor(run), t.TempDir())

	err := sync.Project(context.Background(), testTarget(), "ghost")
	assert.NoError(t, err, "missing source warns and returns")
	assert.Empty(t, readArgv(t, rsyncLog), "no transfer should be attempted")
}

func TestSyncer_RsyncMissing(t *testing.T) {
	binDir := t.TempDir()
	stubTool(t, binDir, "ssh", filepath.Join(t.TempDir(), "ssh.log"), 0)
	t.Setenv("PATH", binDir)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo"), 0o755))

	run := runner.New()
	run.Out = &bytes.Buffer{}
	sync := NewSyncer(run, NewExecutor(run), root)

	err := sync.Project(context.Background(), testTarget(), "demo")
	assert.True(t, errdefs.IsNotFound(err), "missing rsync is a fatal configuration error")
}

func TestSyncer_TransferFailurePropagates(t *testing.T) {
	binDir := t.TempDir()
	stubTool(t, binDir, "ssh", filepath.Join(t.TempDir(), "ssh.log"), 0)
	stubTool(t, binDir, "rsync", filepath.Join(t.TempDir(), "rsync.log"), 12)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo"), 0o755))

	run := runner.New()
	run.Out = &bytes.Buffer{}
	sync := NewSyncer(run, NewExecutor(run), root)

	err := sync.Project(context.Background(), testTarget(), "demo")
	require.Error(t, err)
	assert.Equal(t, 12, errdefs.ExitCode(err))
}

func TestSyncer_Artifact(t *testing.T) {
	binDir := t.TempDir()
	logDir := t.TempDir()
	sshLog := filepath.Join(logDir, "ssh.log")
	rsyncLog := filepath.Join(logDir, "rsync.log")
	stubTool(t, binDir, "ssh", sshLog, 0)
	stubTool(t, binDir, "rsync", rsyncLog, 0)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	artifact := filepath.Join(t.TempDir(), "demo.sif")
	require.NoError(t, os.WriteFile(artifact, []byte("sif"), 0o644))

	run := runner.New()
	run.Out = &bytes.Buffer{}
	sync := NewSyncer(run, NewExecutor(run), t.TempDir())

	require.NoError(t, sync.Artifact(context.Background(), testTarget(), "demo", "images", artifact))

	sshLines := readArgv(t, sshLog)
	require.Len(t, sshLines, 1)
	assert.Contains(t, sshLines[0], "mkdir -p /scratch/alice/demo/images")

	rsyncLines := readArgv(t, rsyncLog)
	require.Len(t, rsyncLines, 1)
	assert.Contains(t, rsyncLines[0], artifact)
	assert.Contains(t, rsyncLines[0], ":/scratch/alice/demo/images/")
}
