package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calligo/sweepctl/pkg/dispatch"
	"github.com/calligo/sweepctl/pkg/jobs"
	"github.com/calligo/sweepctl/pkg/remote"
	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/types"
)

var (
	sweepProject    string
	sweepCluster    string
	sweepExperiment string
	sweepRemote     string
	sweepNoDispatch bool
)

// newDispatcher wires the real syncer and executor for remote routing.
func newDispatcher() *dispatch.Dispatcher {
	run := runner.New()
	exec := remote.NewExecutor(run)
	sync := remote.NewSyncer(run, exec, newStore().Root())
	return dispatch.New(sync, exec)
}

// sweepArgs rebuilds the flag set naming the sweep for the remote side.
func sweepArgs() []string {
	return []string{
		"--project", sweepProject,
		"--cluster", sweepCluster,
		"--experiment", sweepExperiment,
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Expand an experiment grid into scheduler job scripts",
	Long: `Expand the experiment's parameter grid against a cluster profile and
write one scheduler script per parameter combination into the runs
directory. With --remote, the project is synced to the named target and
generation runs there instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store := newStore()

		cfg, err := store.LoadProject(sweepProject)
		if err != nil {
			return err
		}
		st, err := newDispatcher().Dispatch(ctx, cfg, dispatch.Request{
			Op:         "generate",
			Project:    sweepProject,
			RemoteName: sweepRemote,
			Args:       sweepArgs(),
		})
		if err != nil {
			return err
		}
		if st == dispatch.StateDispatched {
			return nil
		}

		generated, err := jobs.NewGenerator(store).Generate(sweepProject, sweepCluster, sweepExperiment)
		if err != nil {
			return err
		}
		fmt.Printf("Generated %d job scripts in %s\n", len(generated), store.RunsDir(sweepProject, sweepCluster, sweepExperiment))
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit generated job scripts to the batch scheduler",
	Long: `Submit every generated job script of the cluster/experiment pair to
the scheduler, one sbatch call per script in generation order. With
--remote (or a remote embedded in the cluster profile), the project is
synced to the target and submission runs there instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store := newStore()

		cfg, err := store.LoadProject(sweepProject)
		if err != nil {
			return err
		}

		if !sweepNoDispatch {
			req := submitRequest()
			d := newDispatcher()

			st, err := d.Dispatch(ctx, cfg, req)
			if err != nil {
				return err
			}
			if st == dispatch.StateDispatched {
				return nil
			}

			// No remote named on the command line: a remote embedded in
			// the cluster profile still routes the submission.
			profile, err := store.LoadClusterProfile(sweepProject, sweepCluster)
			if err != nil {
				return err
			}
			if profile.Remote != nil {
				return submitVia(ctx, d, *profile.Remote, req)
			}
		}

		return jobs.NewSubmitter(runner.New()).SubmitDir(ctx, store.RunsDir(sweepProject, sweepCluster, sweepExperiment))
	},
}

// submitRequest names the submission for remote re-invocation. The
// reconstructed command carries --no-dispatch: the synced cluster profile
// on the target still embeds the same remote record, and without the flag
// the remote invocation would dispatch to itself again.
func submitRequest() dispatch.Request {
	return dispatch.Request{
		Op:         "submit",
		Project:    sweepProject,
		RemoteName: sweepRemote,
		Args:       append(sweepArgs(), "--no-dispatch"),
	}
}

func submitVia(ctx context.Context, d *dispatch.Dispatcher, target types.RemoteTarget, req dispatch.Request) error {
	_, err := d.DispatchTo(ctx, target, req)
	return err
}

func init() {
	for _, cmd := range []*cobra.Command{generateCmd, submitCmd} {
		f := cmd.Flags()
		f.StringVar(&sweepProject, "project", "", "Project name")
		f.StringVar(&sweepCluster, "cluster", "", "Cluster profile name")
		f.StringVar(&sweepExperiment, "experiment", "", "Experiment name")
		f.StringVar(&sweepRemote, "remote", "", "Run on the named remote target instead of locally")
		_ = cmd.MarkFlagRequired("project")
		_ = cmd.MarkFlagRequired("cluster")
		_ = cmd.MarkFlagRequired("experiment")
	}
	submitCmd.Flags().BoolVar(&sweepNoDispatch, "no-dispatch", false, "Submit locally even when a remote is configured")
}
