package dispatch

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/types"
)

// State reports where an operation ended up running.
type State int

const (
	// StateLocal means no remote was requested; the caller runs the
	// operation itself.
	StateLocal State = iota
	// StateValidatingRemote and StateSyncing are transient; Dispatch
	// only returns them inside an Error pairing when that phase failed.
	StateValidatingRemote
	StateSyncing
	// StateDispatched means the operation ran to completion on the
	// remote target. The caller must not also run it locally.
	StateDispatched
	// StateError means dispatch was requested but failed.
	StateError
)

func (s State) String() string {
	switch s {
	case StateLocal:
		return "local"
	case StateValidatingRemote:
		return "validating-remote"
	case StateSyncing:
		return "syncing"
	case StateDispatched:
		return "dispatched"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Syncer mirrors a project tree to a remote target.
type Syncer interface {
	Project(ctx context.Context, target types.RemoteTarget, project string) error
}

// Executor runs a command string on a remote target.
type Executor interface {
	Command(ctx context.Context, target types.RemoteTarget, command string) error
}

// Request names an operation and the remote it should run on. An empty
// RemoteName means the operation stays local.
type Request struct {
	Op         string
	Project    string
	RemoteName string
	Args       []string
}

// Dispatcher routes operations either to the local caller or, after
// syncing project state, to a configured remote target where the same
// binary re-runs the operation.
type Dispatcher struct {
	Sync   Syncer
	Exec   Executor
	Binary string

	logger zerolog.Logger
}

// DefaultBinary is the executable name reconstructed on the remote side.
const DefaultBinary = "sweepctl"

// New creates a dispatcher using the given syncer and executor.
func New(sync Syncer, exec Executor) *Dispatcher {
	return &Dispatcher{
		Sync:   sync,
		Exec:   exec,
		Binary: DefaultBinary,
		logger: log.WithComponent("dispatch"),
	}
}

// Dispatch routes req. With no remote named it returns StateLocal
// immediately and the caller proceeds locally. Otherwise it validates
// the remote against cfg, syncs the project tree, and re-invokes the
// operation on the target rooted at the synced copy. An unknown remote
// name fails before any sync or remote command with a ConfigError
// listing the configured names.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg *types.ProjectConfig, req Request) (State, error) {
	if req.RemoteName == "" {
		return StateLocal, nil
	}

	target, ok := cfg.Remotes[req.RemoteName]
	if !ok {
		names := make([]string, 0, len(cfg.Remotes))
		for name := range cfg.Remotes {
			names = append(names, name)
		}
		sort.Strings(names)
		return StateError, errdefs.Configf(
			"unknown remote %q, configured remotes: [%s]",
			req.RemoteName, strings.Join(names, ", "),
		)
	}

	d.logger.Info().
		Str("remote", req.RemoteName).
		Str("op", req.Op).
		Str("project", req.Project).
		Msg("dispatching to remote")

	return d.DispatchTo(ctx, target, req)
}

// DispatchTo syncs and re-invokes on an already-resolved target, for
// callers holding an embedded target rather than a configured name.
func (d *Dispatcher) DispatchTo(ctx context.Context, target types.RemoteTarget, req Request) (State, error) {
	if err := d.Sync.Project(ctx, target, req.Project); err != nil {
		return StateError, err
	}
	if err := d.Exec.Command(ctx, target, d.remoteCommand(target, req)); err != nil {
		return StateError, err
	}
	return StateDispatched, nil
}

// remoteCommand rebuilds the invocation for the remote side, rooted at
// the synced project tree under the target's base path.
func (d *Dispatcher) remoteCommand(target types.RemoteTarget, req Request) string {
	parts := []string{
		"cd " + shellQuote(target.RemoteBasePath), "&&",
		d.Binary, "--root", ".", req.Op,
	}
	for _, arg := range req.Args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// shellQuote single-quotes s when it contains characters the remote
// shell would interpret.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\"'$&|;<>()*?!~`\\") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
