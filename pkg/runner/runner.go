package runner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/log"
)

// diagnosticTailLines is how many trailing output lines are kept for the
// diagnostic attached to a non-zero exit.
const diagnosticTailLines = 5

// FaultDetector recognizes a known failure signature in streamed output.
// A match mutes further pass-through but does not kill the process.
type FaultDetector struct {
	Name      string
	Signature string
}

// Runner spawns external processes. Streamed commands relay merged
// stdout/stderr line by line as produced; captured commands buffer output
// to completion.
type Runner struct {
	// Out receives streamed output lines. Defaults to os.Stdout.
	Out io.Writer

	// Detectors are checked against every streamed line.
	Detectors []FaultDetector

	logger zerolog.Logger
}

// New creates a Runner writing streamed output to stdout.
func New() *Runner {
	return &Runner{
		Out:    os.Stdout,
		logger: log.WithComponent("runner"),
	}
}

// WithDetectors returns a copy of the runner with the given fault
// detectors installed.
func (r *Runner) WithDetectors(detectors ...FaultDetector) *Runner {
	clone := *r
	clone.Detectors = append(append([]FaultDetector(nil), r.Detectors...), detectors...)
	return &clone
}

// Stream runs the command, relaying merged stdout/stderr to r.Out line by
// line as it is produced. It blocks until the process exits.
//
// A missing binary maps to a ToolNotFoundError; a non-zero exit maps to an
// ExecError carrying the exact code and a tail of the last output lines.
// Fault detector matches are returned alongside; a match is not an error
// by itself, the exit code decides.
func (r *Runner) Stream(ctx context.Context, name string, args ...string) ([]errdefs.StreamFault, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return r.stream(cmd, name)
}

// StreamShell runs a shell command line via "sh -c" in dir, streaming like
// Stream.
func (r *Runner) StreamShell(ctx context.Context, command, dir string) ([]errdefs.StreamFault, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	return r.stream(cmd, "sh")
}

func (r *Runner) stream(cmd *exec.Cmd, name string) ([]errdefs.StreamFault, error) {
	r.logger.Debug().Strs("argv", cmd.Args).Msg("spawning")

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		if errors.Is(err, exec.ErrNotFound) {
			return nil, errdefs.NotFound(name)
		}
		return nil, errors.Wrapf(err, "start %s", name)
	}

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
		pw.Close()
	}()

	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	var (
		faults []errdefs.StreamFault
		muted  bool
		tail   []string
	)
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		tail = appendTail(tail, line)

		if !muted {
			if d, ok := r.match(line); ok {
				faults = append(faults, errdefs.StreamFault{Detector: d.Name, Line: line})
				muted = true
				r.logger.Warn().Str("detector", d.Name).Str("line", line).
					Msg("failure signature detected, muting further output")
				continue
			}
			fmt.Fprintln(out, line)
		}
	}

	// A scanner abort (line over the buffer cap) stops the read loop with
	// the process still writing; keep draining the pipe or Wait never
	// returns and the child is left running.
	scanErr := scanner.Err()
	if scanErr != nil {
		r.logger.Warn().Err(scanErr).Str("tool", name).
			Msg("output streaming aborted, draining remaining output")
		_, _ = io.Copy(io.Discard, pr)
	}

	err := <-waitCh
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return faults, errdefs.Exec(name, exitErr.ExitCode(), strings.Join(tail, "\n"))
		}
		return faults, errors.Wrapf(err, "wait for %s", name)
	}
	if scanErr != nil {
		return faults, errors.Wrapf(scanErr, "read %s output", name)
	}
	return faults, nil
}

func (r *Runner) match(line string) (FaultDetector, bool) {
	for _, d := range r.Detectors {
		if strings.Contains(line, d.Signature) {
			return d, true
		}
	}
	return FaultDetector{}, false
}

// Capture runs the command to completion without streaming and returns its
// stdout. On a non-zero exit the ExecError diagnostic carries the stderr
// tail verbatim.
func (r *Runner) Capture(ctx context.Context, name string, args ...string) (string, error) {
	r.logger.Debug().Str("tool", name).Strs("args", args).Msg("running")

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", errdefs.NotFound(name)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), errdefs.Exec(name, exitErr.ExitCode(), lastLines(stderr.String(), diagnosticTailLines))
		}
		return stdout.String(), errors.Wrapf(err, "run %s", name)
	}
	return stdout.String(), nil
}

func appendTail(tail []string, line string) []string {
	tail = append(tail, line)
	if len(tail) > diagnosticTailLines {
		tail = tail[1:]
	}
	return tail
}

func lastLines(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
