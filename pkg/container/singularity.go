package container

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/state"
)

// Singularity wraps the singularity binary for converting local docker
// images into .sif artifacts suitable for scheduler-managed clusters.
type Singularity struct {
	Run    *runner.Runner
	State  *state.Store
	logger zerolog.Logger
}

// NewSingularity creates a converter recording idempotency in st (st may
// be nil to always convert).
func NewSingularity(run *runner.Runner, st *state.Store) *Singularity {
	return &Singularity{
		Run:    run,
		State:  st,
		logger: log.WithComponent("singularity"),
	}
}

// SifName maps a docker image name to its converted artifact filename:
// the tag is dropped and the repository name keeps only its last path
// element.
func SifName(image string) string {
	name := image
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name + ".sif"
}

// Convert builds <outDir>/<name>.sif from the local docker image,
// streaming conversion output. Conversion is skipped when a previous run
// already produced the artifact and it is still on disk.
func (s *Singularity) Convert(ctx context.Context, image, outDir string) (string, error) {
	sifPath := filepath.Join(outDir, SifName(image))
	step := "convert:" + sifPath

	if s.State != nil {
		status, err := s.State.Check(step)
		if err != nil {
			return "", err
		}
		if status == state.StatusDone {
			if _, err := os.Stat(sifPath); err == nil {
				s.logger.Info().Str("sif", sifPath).Msg("artifact already converted, skipping")
				return sifPath, nil
			}
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create artifact directory")
	}

	s.logger.Info().Str("image", image).Str("sif", sifPath).Msg("converting image")
	if _, err := s.Run.Stream(ctx, "singularity", "build", sifPath, "docker-daemon://"+image); err != nil {
		if s.State != nil {
			if markErr := s.State.MarkFailed(step, err.Error()); markErr != nil {
				s.logger.Error().Err(markErr).Msg("failed to record conversion failure")
			}
		}
		return "", errors.Wrap(err, "convert image")
	}

	if s.State != nil {
		if err := s.State.MarkDone(step); err != nil {
			return "", err
		}
	}
	return sifPath, nil
}
