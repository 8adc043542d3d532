package main

import (
	"testing"

	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/types"
)

func TestBuildProjectConfig(t *testing.T) {
	cfg, err := buildProjectConfig(projectInput{
		Name:       "mnist",
		RepoURL:    "https://example.com/mnist.git",
		RunCommand: "python train.py --smoke",
		GPUs:       true,
		Tracking:   "offline",
	})
	if err != nil {
		t.Fatalf("buildProjectConfig() error = %v", err)
	}
	if cfg.Version != types.SchemaVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, types.SchemaVersion)
	}
	if cfg.General.ProjectName != "mnist" {
		t.Errorf("ProjectName = %q, want %q", cfg.General.ProjectName, "mnist")
	}
	if cfg.Test.TrackingMode != types.TrackingOffline {
		t.Errorf("TrackingMode = %q, want %q", cfg.Test.TrackingMode, types.TrackingOffline)
	}
}

func TestBuildProjectConfig_Defaults(t *testing.T) {
	cfg, err := buildProjectConfig(projectInput{Name: "p", RunCommand: "make test"})
	if err != nil {
		t.Fatalf("buildProjectConfig() error = %v", err)
	}
	if cfg.Test.TrackingMode != types.TrackingDisabled {
		t.Errorf("TrackingMode = %q, want %q", cfg.Test.TrackingMode, types.TrackingDisabled)
	}
}

func TestBuildProjectConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   projectInput
	}{
		{"empty name", projectInput{RunCommand: "make test"}},
		{"empty run command", projectInput{Name: "p"}},
		{"bad tracking mode", projectInput{Name: "p", RunCommand: "make test", Tracking: "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildProjectConfig(tt.in); !errdefs.IsConfig(err) {
				t.Errorf("buildProjectConfig() error = %v, want ConfigError", err)
			}
		})
	}
}
