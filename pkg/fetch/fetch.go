package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/state"
)

// legacyDatasetMarker is the marker file older project trees used to
// record a completed dataset download. Honored as equivalent to a Done
// state record.
const legacyDatasetMarker = ".dataset_downloaded"

const datasetStep = "dataset_download"

// Fetcher materializes a project's repository and dataset into a working
// directory. Both operations are idempotent: completed work is skipped on
// re-runs.
type Fetcher struct {
	Run    *runner.Runner
	State  *state.Store
	logger zerolog.Logger
}

// NewFetcher creates a fetcher recording idempotency in st.
func NewFetcher(run *runner.Runner, st *state.Store) *Fetcher {
	return &Fetcher{
		Run:    run,
		State:  st,
		logger: log.WithComponent("fetch"),
	}
}

// CloneRepo clones url into dir, skipping when a clone already exists
// there. The version-control metadata directory is the authoritative
// presence check, so partially deleted trees re-clone.
func (f *Fetcher) CloneRepo(ctx context.Context, url, dir string) error {
	if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
		f.logger.Info().Str("dir", dir).Msg("repository already present, skipping clone")
		return nil
	}

	f.logger.Info().Str("url", url).Str("dir", dir).Msg("cloning repository")
	if _, err := f.Run.Capture(ctx, "git", "clone", url, dir); err != nil {
		return errors.Wrap(err, "clone repository")
	}
	return nil
}

// FetchDataset runs the configured dataset command inside dir, once. An
// empty command is a no-op. Success is recorded in the state store;
// failure is recorded too, so the next run knows the previous attempt
// broke rather than never happened.
func (f *Fetcher) FetchDataset(ctx context.Context, command, dir string) error {
	if command == "" {
		return nil
	}

	status, err := f.State.Check(datasetStep)
	if err != nil {
		return err
	}
	if status == state.StatusDone || f.hasLegacyMarker(dir) {
		f.logger.Info().Msg("dataset already downloaded, skipping")
		return nil
	}
	if status == state.StatusNeededFailed {
		if msg, _ := f.State.Failure(datasetStep); msg != "" {
			f.logger.Warn().Str("previous_failure", msg).Msg("retrying dataset download")
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create dataset directory")
	}

	f.logger.Info().Str("command", command).Msg("running dataset download command")
	if _, err := f.Run.StreamShell(ctx, command, dir); err != nil {
		if markErr := f.State.MarkFailed(datasetStep, err.Error()); markErr != nil {
			f.logger.Error().Err(markErr).Msg("failed to record download failure")
		}
		return errors.Wrap(err, "dataset download command")
	}
	return f.State.MarkDone(datasetStep)
}

func (f *Fetcher) hasLegacyMarker(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, legacyDatasetMarker))
	return err == nil
}
