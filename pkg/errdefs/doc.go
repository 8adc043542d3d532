/*
Package errdefs defines the error taxonomy shared across sweepctl.

Three fatal kinds cover every failure path:

  - ConfigError: bad or missing configuration, raised before any external
    process runs.
  - ToolNotFoundError: a required binary is absent on the invoking host,
    reported with a remediation hint and never retried.
  - ExecError: an external process exited non-zero; carries the exact exit
    code and captured diagnostic output verbatim.

StreamFault is the one non-fatal record: a known failure signature seen
mid-stream from a sub-tool. It mutes further pass-through but the parent
exit code still decides the outcome.

Errors are built with github.com/pkg/errors so stacks are available at
debug level; the CLI surfaces only the one-line messages. ExitCode maps
any error to the process exit status.
*/
package errdefs
