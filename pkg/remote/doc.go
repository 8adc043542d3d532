/*
Package remote moves project state to scheduler-facing hosts and executes
commands there.

Both halves ride on external binaries, ssh for execution and rsync for
transfer, invoked synchronously through pkg/runner. A binary missing on
the invoking host is a fatal configuration error; a non-zero exit from the
remote side propagates with its exact code and captured diagnostics.

# Execution

Executor.Command opens one ssh session per command. The target's
init_commands are chained in front of the requested command as a
CommandSeq joined with " && ", so environment setup failures short-circuit
before the real command runs:

	init_commands: ["source env.sh"]
	command:       "run.sh"
	remote line:   "source env.sh && run.sh"

CommandSeq is the only place remote command lines are assembled; callers
never concatenate shell strings by hand.

Output streams back line by line as the remote process produces it, so a
multi-hour job submission loop is observable live.

# Sync

Syncer.Project mirrors <root>/<project> to <remote_base_path>/<project>/
one way. rsync's delta transfer makes the operation idempotent: a second
sync of unchanged content sends no file payload. The destination directory
is created over ssh before the transfer. A missing local source logs a
warning and returns cleanly; nothing to sync is not a failure.
Syncer.Artifact ships a single built file (for example a converted
container image) the same way.
*/
package remote
