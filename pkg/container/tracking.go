package container

import (
	"os"
	"path/filepath"

	"github.com/calligo/sweepctl/pkg/runner"
	"github.com/calligo/sweepctl/pkg/types"
)

// trackerFaultDetectors recognize experiment-tracker failures inside an
// otherwise healthy container run. Detection mutes the tracker's noise;
// the container's exit code still decides the outcome.
var trackerFaultDetectors = []runner.FaultDetector{
	{Name: "wandb-auth", Signature: "wandb: ERROR api_key not configured"},
	{Name: "wandb-login", Signature: "wandb: ERROR Error while calling W&B API"},
}

// trackingArgs builds the docker run arguments threading the experiment
// tracking mode into the container: the mode itself as an environment
// variable and, for online tracking, the host credentials mounted
// read-only where the tracker expects them.
func trackingArgs(mode types.TrackingMode, home string) []string {
	if mode == "" || mode == types.TrackingDisabled {
		return nil
	}
	if home == "" {
		home, _ = os.UserHomeDir()
	}

	args := []string{"-e", "WANDB_MODE=" + string(mode)}
	if mode != types.TrackingOnline {
		return args
	}

	config := filepath.Join(home, ".config", "wandb")
	if _, err := os.Stat(config); err == nil {
		args = append(args, "-v", config+":/root/.config/wandb")
	}
	netrc := filepath.Join(home, ".netrc")
	if _, err := os.Stat(netrc); err == nil {
		args = append(args, "-v", netrc+":/root/.netrc")
	}
	return args
}
