package jobs

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/runner"
)

// Submitter hands generated job scripts to the batch scheduler, one
// sequential sbatch invocation per script.
type Submitter struct {
	Run    *runner.Runner
	logger zerolog.Logger
}

// NewSubmitter creates a submitter using the given runner.
func NewSubmitter(run *runner.Runner) *Submitter {
	return &Submitter{
		Run:    run,
		logger: log.WithComponent("submitter"),
	}
}

// SubmitDir submits every run_*.slurm script in dir, in lexicographic
// (= generation) order. A failed submission does not stop the loop and
// does not roll back earlier ones: remaining scripts are still submitted
// and per-script failures are aggregated, so the caller can decide what to
// resubmit.
func (s *Submitter) SubmitDir(ctx context.Context, dir string) error {
	scripts, err := filepath.Glob(filepath.Join(dir, "run_*"+ScriptExt))
	if err != nil {
		return errors.Wrap(err, "list job scripts")
	}
	if len(scripts) == 0 {
		return errdefs.Configf("no job scripts in %s; run 'sweepctl generate' first", dir)
	}
	sort.Strings(scripts)

	var result *multierror.Error
	for _, script := range scripts {
		// A missing sbatch binary will fail identically for every script;
		// surface it once instead of repeating the loop.
		if _, err := s.Run.Stream(ctx, "sbatch", script); err != nil {
			if errdefs.IsNotFound(err) {
				return err
			}
			s.logger.Error().Err(err).Str("script", script).Msg("submission failed")
			result = multierror.Append(result, errors.Wrapf(err, "submit %s", filepath.Base(script)))
			continue
		}
		s.logger.Info().Str("script", script).Msg("submitted")
	}

	if result != nil {
		s.logger.Warn().
			Int("failed", result.Len()).
			Int("total", len(scripts)).
			Msg("some submissions failed")
	}
	return result.ErrorOrNil()
}
