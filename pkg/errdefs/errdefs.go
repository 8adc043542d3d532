package errdefs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports invalid or missing configuration. Configuration is
// validated eagerly: a ConfigError is always raised before any external
// process runs.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

// Configf builds a ConfigError with a stack attached.
func Configf(format string, args ...interface{}) error {
	return errors.WithStack(&ConfigError{msg: fmt.Sprintf(format, args...)})
}

// IsConfig reports whether err is (or wraps) a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ToolNotFoundError reports a required external binary missing on the
// invoking host. It is never retried; the message carries a remediation
// hint when one is known for the tool.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	if hint, ok := toolHints[e.Tool]; ok {
		return fmt.Sprintf("required tool %q not found in PATH: %s", e.Tool, hint)
	}
	return fmt.Sprintf("required tool %q not found in PATH", e.Tool)
}

// NotFound builds a ToolNotFoundError for the named binary.
func NotFound(tool string) error {
	return errors.WithStack(&ToolNotFoundError{Tool: tool})
}

// IsNotFound reports whether err is (or wraps) a ToolNotFoundError.
func IsNotFound(err error) bool {
	var te *ToolNotFoundError
	return errors.As(err, &te)
}

// toolHints maps known external binaries to remediation hints.
var toolHints = map[string]string{
	"ssh":         "install an OpenSSH client",
	"rsync":       "install rsync",
	"git":         "install Git",
	"docker":      "install Docker and ensure the daemon is running",
	"singularity": "install Singularity/Apptainer",
	"sbatch":      "run on a host with the Slurm client tools installed",
}

// ExecError reports an external process that exited non-zero. Diagnostic
// holds captured output (stderr tail, remote diagnostics) verbatim.
type ExecError struct {
	Tool       string
	ExitCode   int
	Diagnostic string
}

func (e *ExecError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Diagnostic)
	}
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

// Exec builds an ExecError.
func Exec(tool string, exitCode int, diagnostic string) error {
	return errors.WithStack(&ExecError{Tool: tool, ExitCode: exitCode, Diagnostic: diagnostic})
}

// IsExec reports whether err is (or wraps) an ExecError.
func IsExec(err error) bool {
	var ee *ExecError
	return errors.As(err, &ee)
}

// ExitCode extracts the process exit code to surface for err: the exact
// remote/tool code for ExecError, 1 for anything else, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.ExitCode
	}
	return 1
}

// StreamFault records a known failure signature observed mid-stream from a
// tracked sub-tool while the parent process was still running. It is a
// diagnostic record, not an error: the parent's final exit code decides
// success.
type StreamFault struct {
	Detector string
	Line     string
}
