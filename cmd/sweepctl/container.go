package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calligo/sweepctl/pkg/config"
	"github.com/calligo/sweepctl/pkg/container"
	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/fetch"
	"github.com/calligo/sweepctl/pkg/fsutil"
	"github.com/calligo/sweepctl/pkg/log"
	"github.com/calligo/sweepctl/pkg/remote"
	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/state"
	"github.com/calligo/sweepctl/pkg/types"
)

const (
	repoDirName      = "repo"
	artifactsDirName = "artifacts"
)

var (
	containerProject string
	convertRemote    string
)

func imageTag(project string) string {
	return project + ":latest"
}

// materialize clones the project repository (and dataset, when wanted)
// into <project>/repo, idempotently.
func materialize(ctx context.Context, store *config.Store, cfg *types.ProjectConfig, st *state.Store, withDataset bool) (string, error) {
	repoDir := filepath.Join(store.ProjectDir(cfg.General.ProjectName), repoDirName)
	f := fetch.NewFetcher(runner.New(), st)

	if cfg.Test.RepoURL == "" {
		return "", errdefs.Configf("project %q has no repository URL configured", cfg.General.ProjectName)
	}
	if err := f.CloneRepo(ctx, cfg.Test.RepoURL, repoDir); err != nil {
		return "", err
	}
	if withDataset {
		if err := f.FetchDataset(ctx, cfg.Test.DatasetCommand, repoDir); err != nil {
			return "", err
		}
	}
	return repoDir, nil
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the project's container image",
	Long: `Clone the project repository if needed and build its container image
from the repository root. The image is tagged after the project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store := newStore()

		cfg, err := store.LoadProject(containerProject)
		if err != nil {
			return err
		}
		st, err := state.OpenProject(store.ProjectDir(containerProject))
		if err != nil {
			return err
		}
		defer st.Close()

		repoDir, err := materialize(ctx, store, cfg, st, false)
		if err != nil {
			return err
		}

		tag := imageTag(containerProject)
		if err := container.NewDocker(runner.New()).Build(ctx, tag, repoDir); err != nil {
			return err
		}
		fmt.Printf("Image %s built\n", tag)
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the project's test command in a container",
	Long: `Run the full verification pipeline: clone the repository, download
the dataset, build the container image, and execute the configured run
command inside the container with the repository bind-mounted. GPU
exposure and experiment tracking follow the project record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store := newStore()

		cfg, err := store.LoadProject(containerProject)
		if err != nil {
			return err
		}
		st, err := state.OpenProject(store.ProjectDir(containerProject))
		if err != nil {
			return err
		}
		defer st.Close()

		repoDir, err := materialize(ctx, store, cfg, st, true)
		if err != nil {
			return err
		}

		docker := container.NewDocker(runner.New())
		tag := imageTag(containerProject)
		if err := docker.Build(ctx, tag, repoDir); err != nil {
			return err
		}

		runErr := docker.RunTest(ctx, tag, repoDir, cfg.Test.RunCommand, container.TestOptions{
			GPUs:     cfg.Test.GPUs,
			Tracking: cfg.Test.TrackingMode,
		})

		// The container may have written root-owned files into the mounted
		// tree; repair it even when the test failed.
		if err := fsutil.FixTree(repoDir, 0o664); err != nil {
			log.Logger.Warn().Err(err).Msg("could not repair tree permissions")
		}
		if err := fsutil.RestoreOwner(repoDir); err != nil {
			log.Logger.Warn().Err(err).Msg("could not restore tree ownership")
		}

		if runErr != nil {
			return runErr
		}
		fmt.Println("Test run completed")
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the project image into a cluster artifact",
	Long: `Convert the locally built container image into a .sif artifact under
the project's artifacts directory. With --remote, the artifact is also
shipped to the named target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store := newStore()

		cfg, err := store.LoadProject(containerProject)
		if err != nil {
			return err
		}
		st, err := state.OpenProject(store.ProjectDir(containerProject))
		if err != nil {
			return err
		}
		defer st.Close()

		outDir := filepath.Join(store.ProjectDir(containerProject), artifactsDirName)
		sifPath, err := container.NewSingularity(runner.New(), st).Convert(ctx, imageTag(containerProject), outDir)
		if err != nil {
			return err
		}
		fmt.Printf("Artifact written to %s\n", sifPath)

		if convertRemote == "" {
			return nil
		}
		target, ok := cfg.Remotes[convertRemote]
		if !ok {
			return errdefs.Configf("unknown remote %q, configured remotes: %v", convertRemote, config.RemoteNames(cfg))
		}
		run := runner.New()
		sync := remote.NewSyncer(run, remote.NewExecutor(run), store.Root())
		if err := sync.Artifact(ctx, target, containerProject, artifactsDirName, sifPath); err != nil {
			return err
		}
		fmt.Printf("Artifact shipped to %s\n", convertRemote)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{buildCmd, testCmd, convertCmd} {
		cmd.Flags().StringVar(&containerProject, "project", "", "Project name")
		_ = cmd.MarkFlagRequired("project")
	}
	convertCmd.Flags().StringVar(&convertRemote, "remote", "", "Ship the artifact to the named remote target")
}
