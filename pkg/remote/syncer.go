package remote

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/types"
)

// Syncer mirrors local project state to a remote target. Transfers are
// one-way and content-addressed: only changed or missing files are sent,
// so repeating a sync of unchanged content is a no-op.
type Syncer struct {
	Run *runner.Runner

	// Exec issues the pre-transfer directory-creation command.
	Exec *Executor

	// Root is the local workspace root holding project directories.
	Root string

	logger zerolog.Logger
}

// NewSyncer creates a syncer over the given workspace root.
func NewSyncer(run *runner.Runner, exec *Executor, root string) *Syncer {
	return &Syncer{
		Run:    run,
		Exec:   exec,
		Root:   root,
		logger: log.WithComponent("sync"),
	}
}

// Project mirrors the local project directory to
// <remote_base_path>/<project>/ on the target. The destination directory
// is created first so the transfer never fails on a fresh host. A missing
// local project directory is a warning, not an error: nothing to sync is
// not fatal.
func (s *Syncer) Project(ctx context.Context, target types.RemoteTarget, project string) error {
	local := filepath.Join(s.Root, project)
	if info, err := os.Stat(local); err != nil || !info.IsDir() {
		s.logger.Warn().Str("dir", local).Msg("local project directory not found, nothing to sync")
		return nil
	}

	if err := s.Exec.Command(ctx, target, "mkdir -p "+target.RemoteBasePath); err != nil {
		return err
	}

	dest := fmt.Sprintf("%s:%s/", target.Addr(), target.RemoteBasePath)
	return s.rsync(ctx, target, local, dest)
}

// Artifact ships a single built file into <remote_base_path>/<project>/<subdir>/
// on the target.
func (s *Syncer) Artifact(ctx context.Context, target types.RemoteTarget, project, subdir, artifact string) error {
	if _, err := os.Stat(artifact); err != nil {
		s.logger.Warn().Str("file", artifact).Msg("local artifact not found, nothing to sync")
		return nil
	}

	remoteDir := path.Join(target.RemoteBasePath, project, subdir)
	if err := s.Exec.Command(ctx, target, "mkdir -p "+remoteDir); err != nil {
		return err
	}

	dest := fmt.Sprintf("%s:%s/", target.Addr(), remoteDir)
	return s.rsync(ctx, target, artifact, dest)
}

func (s *Syncer) rsync(ctx context.Context, target types.RemoteTarget, src, dest string) error {
	shell := fmt.Sprintf("ssh -p %d -o StrictHostKeyChecking=no", target.Port)
	args := []string{"-az", "--delete", "-e", shell, src, dest}

	s.logger.Info().Str("src", src).Str("dest", dest).Msg("syncing")
	if _, err := s.Run.Capture(ctx, "rsync", args...); err != nil {
		return err
	}
	s.logger.Info().Msg("sync completed")
	return nil
}
