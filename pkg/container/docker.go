package container

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/types"
)

// Docker wraps the docker binary for image builds and containerized test
// runs.
type Docker struct {
	Run    *runner.Runner
	logger zerolog.Logger
}

// NewDocker creates a docker wrapper using the given runner.
func NewDocker(run *runner.Runner) *Docker {
	return &Docker{
		Run:    run,
		logger: log.WithComponent("docker"),
	}
}

// Build builds an image from contextDir and tags it, streaming build
// output.
func (d *Docker) Build(ctx context.Context, tag, contextDir string) error {
	d.logger.Info().Str("tag", tag).Str("context", contextDir).Msg("building image")
	if _, err := d.Run.Stream(ctx, "docker", "build", "-t", tag, contextDir); err != nil {
		return errors.Wrap(err, "build image")
	}
	return nil
}

// TestOptions configure a containerized test run.
type TestOptions struct {
	GPUs     bool
	Tracking types.TrackingMode

	// Home overrides the home directory used to locate tracking
	// credentials; defaults to the current user's.
	Home string
}

// RunTest executes runCommand inside a container of the image, with dir
// bind-mounted as the working tree. Output is streamed; a tracker
// authentication signature in the stream is detected and muted without
// failing the run.
func (d *Docker) RunTest(ctx context.Context, tag, dir, runCommand string, opts TestOptions) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrap(err, "resolve test directory")
	}

	args := []string{"run", "--rm", "-v", abs + ":/test"}
	if opts.GPUs {
		args = append(args, "--gpus", "all")
	}
	args = append(args, trackingArgs(opts.Tracking, opts.Home)...)
	args = append(args, tag, "sh", "-c", fmt.Sprintf("cd /test && %s", runCommand))

	d.logger.Info().Str("tag", tag).Str("command", runCommand).Msg("running test in container")
	run := d.Run.WithDetectors(trackerFaultDetectors...)
	if _, err := run.Stream(ctx, "docker", args...); err != nil {
		return errors.Wrap(err, "test run")
	}
	return nil
}
