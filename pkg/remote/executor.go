package remote

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/types"
)

// sshOptions disables host key prompting; targets are operator-configured.
var sshOptions = []string{"-o", "StrictHostKeyChecking=no"}

// Executor runs commands on remote targets over ssh, streaming output as
// it arrives.
type Executor struct {
	Run    *runner.Runner
	logger zerolog.Logger
}

// NewExecutor creates an executor using the given runner.
func NewExecutor(run *runner.Runner) *Executor {
	return &Executor{
		Run:    run,
		logger: log.WithComponent("remote"),
	}
}

// Command runs a command string on the target. The target's configured
// initialization commands are chained in front with short-circuiting AND,
// so an initialization failure aborts before the command runs. Output is
// streamed line by line; a non-zero remote exit surfaces as an ExecError
// with that exact code, and a missing local ssh binary as a
// ToolNotFoundError.
func (e *Executor) Command(ctx context.Context, target types.RemoteTarget, command string) error {
	seq := make(CommandSeq, 0, len(target.InitCommands)+1)
	seq = append(seq, target.InitCommands...)
	seq = append(seq, command)
	line := seq.Join()

	args := []string{"-A", target.Addr(), "-p", strconv.Itoa(target.Port)}
	args = append(args, sshOptions...)
	args = append(args, line)

	e.logger.Info().Str("host", target.Host).Str("command", line).Msg("executing remotely")
	_, err := e.Run.Stream(ctx, "ssh", args...)
	return err
}
