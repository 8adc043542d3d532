package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/calligo/sweepctl/pkg/config"
	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/types"
)

// projectInput is the plain answer set gathered for a new project, from
// flags or interactive prompts. buildProjectConfig turns it into a
// validated record; the prompt layer never constructs config directly.
type projectInput struct {
	Name           string
	RepoURL        string
	RunCommand     string
	DatasetCommand string
	GPUs           bool
	Tracking       string
}

// buildProjectConfig validates in and builds the project record.
func buildProjectConfig(in projectInput) (*types.ProjectConfig, error) {
	if in.Name == "" {
		return nil, errdefs.Configf("project name must not be empty")
	}
	if in.RunCommand == "" {
		return nil, errdefs.Configf("run command must not be empty")
	}

	mode := types.TrackingMode(in.Tracking)
	if in.Tracking == "" {
		mode = types.TrackingDisabled
	}
	switch mode {
	case types.TrackingDisabled, types.TrackingOffline, types.TrackingOnline:
	default:
		return nil, errdefs.Configf("invalid tracking mode %q, valid modes: disabled, offline, online", in.Tracking)
	}

	return &types.ProjectConfig{
		Version: types.SchemaVersion,
		General: types.GeneralConfig{ProjectName: in.Name},
		Test: types.TestConfig{
			RepoURL:        in.RepoURL,
			DatasetCommand: in.DatasetCommand,
			RunCommand:     in.RunCommand,
			GPUs:           in.GPUs,
			TrackingMode:   mode,
		},
	}, nil
}

// promptProject fills the unset fields of in interactively.
func promptProject(in *projectInput) error {
	var qs []*survey.Question
	if in.Name == "" {
		qs = append(qs, &survey.Question{
			Name:     "name",
			Prompt:   &survey.Input{Message: "Project name:"},
			Validate: survey.Required,
		})
	}
	if in.RepoURL == "" {
		qs = append(qs, &survey.Question{
			Name:   "repoURL",
			Prompt: &survey.Input{Message: "Repository URL:"},
		})
	}
	if in.RunCommand == "" {
		qs = append(qs, &survey.Question{
			Name:     "runCommand",
			Prompt:   &survey.Input{Message: "Test run command:"},
			Validate: survey.Required,
		})
	}
	if in.DatasetCommand == "" {
		qs = append(qs, &survey.Question{
			Name:   "datasetCommand",
			Prompt: &survey.Input{Message: "Dataset download command (optional):"},
		})
	}
	if in.Tracking == "" {
		qs = append(qs, &survey.Question{
			Name: "tracking",
			Prompt: &survey.Select{
				Message: "Experiment tracking mode:",
				Options: []string{
					string(types.TrackingDisabled),
					string(types.TrackingOffline),
					string(types.TrackingOnline),
				},
				Default: string(types.TrackingDisabled),
			},
		})
	}
	if len(qs) == 0 {
		return nil
	}
	return survey.Ask(qs, in)
}

var initInput projectInput
var initNonInteractive bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project",
	Long: `Initialize a new project in the workspace, creating the project
directory tree and the project record. Fields not supplied as flags are
gathered interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !initNonInteractive {
			if err := promptProject(&initInput); err != nil {
				return err
			}
		}
		cfg, err := buildProjectConfig(initInput)
		if err != nil {
			return err
		}
		if err := newStore().InitProject(cfg); err != nil {
			return err
		}
		fmt.Printf("Project %q initialized under %s\n", cfg.General.ProjectName, newStore().ProjectDir(cfg.General.ProjectName))
		return nil
	},
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage remote targets",
}

var remoteAddTarget types.RemoteTarget
var remoteAddProject string

var remoteAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a remote target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteAddTarget.Host == "" || remoteAddTarget.User == "" {
			return errdefs.Configf("remote target requires --host and --user")
		}
		if err := newStore().AddRemote(remoteAddProject, args[0], remoteAddTarget); err != nil {
			return err
		}
		fmt.Printf("Remote %q -> %s registered\n", args[0], remoteAddTarget.Addr())
		return nil
	},
}

var remoteLsProject string

var remoteLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered remote targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := newStore().LoadProject(remoteLsProject)
		if err != nil {
			return err
		}
		names := config.RemoteNames(cfg)
		if len(names) == 0 {
			fmt.Println("No remotes registered")
			return nil
		}
		for _, name := range names {
			t := cfg.Remotes[name]
			fmt.Printf("%-20s %s:%d  %s\n", name, t.Addr(), t.Port, t.RemoteBasePath)
		}
		return nil
	},
}

func init() {
	f := initCmd.Flags()
	f.StringVar(&initInput.Name, "project", "", "Project name")
	f.StringVar(&initInput.RepoURL, "repo-url", "", "Repository URL")
	f.StringVar(&initInput.RunCommand, "run-command", "", "Command that exercises the project in a container")
	f.StringVar(&initInput.DatasetCommand, "dataset-command", "", "Command that downloads the dataset")
	f.BoolVar(&initInput.GPUs, "gpus", false, "Expose GPUs to the test container")
	f.StringVar(&initInput.Tracking, "tracking", "", "Experiment tracking mode (disabled, offline, online)")
	f.BoolVar(&initNonInteractive, "no-input", false, "Fail instead of prompting for missing fields")

	af := remoteAddCmd.Flags()
	af.StringVar(&remoteAddProject, "project", "", "Project name")
	af.StringVar(&remoteAddTarget.Host, "host", "", "Remote host")
	af.StringVar(&remoteAddTarget.User, "user", "", "Remote user")
	af.IntVar(&remoteAddTarget.Port, "port", 22, "SSH port")
	af.StringVar(&remoteAddTarget.RemoteBasePath, "base-path", "", "Remote base path holding synced projects")
	af.StringArrayVar(&remoteAddTarget.InitCommands, "init-command", nil, "Command run before every remote operation (repeatable)")
	_ = remoteAddCmd.MarkFlagRequired("project")

	remoteLsCmd.Flags().StringVar(&remoteLsProject, "project", "", "Project name")
	_ = remoteLsCmd.MarkFlagRequired("project")

	remoteCmd.AddCommand(remoteAddCmd)
	remoteCmd.AddCommand(remoteLsCmd)
}
