package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/calligo/sweepctl/pkg/errdefs"
	"github.com/calligo/sweepctl/pkg/log"
)

func init() {
	log.Init(log.Config{Level: log.ErrorLevel})
}

func newTestRunner(out *bytes.Buffer) *Runner {
	r := New()
	r.Out = out
	return r
}

func TestStream_RelaysOutput(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(&out)

	faults, err := r.Stream(context.Background(), "sh", "-c", "echo one; echo two")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if len(faults) != 0 {
		t.Errorf("faults = %v, want none", faults)
	}
	if got := out.String(); got != "one\ntwo\n" {
		t.Errorf("output = %q, want %q", got, "one\ntwo\n")
	}
}

func TestStream_MergesStderr(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(&out)

	_, err := r.Stream(context.Background(), "sh", "-c", "echo err >&2")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if !strings.Contains(out.String(), "err") {
		t.Errorf("output = %q, want stderr relayed", out.String())
	}
}

func TestStream_NonZeroExit(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(&out)

	_, err := r.Stream(context.Background(), "sh", "-c", "echo diag; exit 7")
	if !errdefs.IsExec(err) {
		t.Fatalf("Stream() error = %v, want ExecError", err)
	}
	if got := errdefs.ExitCode(err); got != 7 {
		t.Errorf("ExitCode = %d, want the exact remote code 7", got)
	}
	if !strings.Contains(err.Error(), "diag") {
		t.Errorf("error = %v, want output tail in diagnostic", err)
	}
}

func TestStream_ToolNotFound(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(&out)

	_, err := r.Stream(context.Background(), "sweepctl-no-such-binary-xyzzy")
	if !errdefs.IsNotFound(err) {
		t.Fatalf("Stream() error = %v, want ToolNotFoundError", err)
	}
}

func TestStream_FaultDetectorMutesOutput(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(&out).WithDetectors(FaultDetector{
		Name:      "tracker-auth",
		Signature: "api_key not configured",
	})

	faults, err := r.Stream(context.Background(), "sh", "-c",
		"echo before; echo 'wandb: api_key not configured'; echo after; echo more")
	if err != nil {
		t.Fatalf("Stream() error = %v, fault must not fail a zero-exit parent", err)
	}

	if len(faults) != 1 {
		t.Fatalf("faults = %v, want exactly one", faults)
	}
	if faults[0].Detector != "tracker-auth" {
		t.Errorf("detector = %q, want tracker-auth", faults[0].Detector)
	}

	got := out.String()
	if !strings.Contains(got, "before") {
		t.Errorf("output = %q, want lines before the signature relayed", got)
	}
	for _, muted := range []string{"api_key", "after", "more"} {
		if strings.Contains(got, muted) {
			t.Errorf("output = %q, line %q should be muted after detection", got, muted)
		}
	}
}

func TestStream_FaultThenNonZeroExit(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(&out).WithDetectors(FaultDetector{
		Name:      "tracker-auth",
		Signature: "permission denied by tracker",
	})

	// Detection must not short-circuit waiting: the parent's final exit
	// code is still reported.
	faults, err := r.Stream(context.Background(), "sh", "-c",
		"echo 'permission denied by tracker'; exit 3")
	if len(faults) != 1 {
		t.Errorf("faults = %v, want one", faults)
	}
	if got := errdefs.ExitCode(err); got != 3 {
		t.Errorf("ExitCode = %d, want 3", got)
	}
}

func TestStream_OversizedLineStillReturns(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(&out)

	// A single output line past the scanner cap must not wedge Stream
	// with the child still writing; the abort is drained and surfaced.
	type result struct {
		err error
	}
	done := make(chan result, 1)
	go func() {
		_, err := r.Stream(context.Background(), "sh", "-c",
			"head -c 2097152 /dev/zero | tr '\\0' 'x'; echo")
		done <- result{err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			t.Fatal("Stream() error = nil, want truncation surfaced")
		}
	case <-time.After(30 * time.Second):
		t.Fatal("Stream() did not return for an oversized output line")
	}
}

func TestStream_OversizedLineKeepsExitCode(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(&out)

	done := make(chan error, 1)
	go func() {
		_, err := r.Stream(context.Background(), "sh", "-c",
			"head -c 2097152 /dev/zero | tr '\\0' 'x'; echo; exit 9")
		done <- err
	}()

	select {
	case err := <-done:
		if got := errdefs.ExitCode(err); got != 9 {
			t.Errorf("ExitCode = %d, want the process code 9", got)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("Stream() did not return for an oversized output line")
	}
}

func TestStreamShell_RunsInDir(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	r := newTestRunner(&out)

	_, err := r.StreamShell(context.Background(), "pwd", dir)
	if err != nil {
		t.Fatalf("StreamShell() error = %v", err)
	}
	if !strings.Contains(out.String(), dir) {
		t.Errorf("output = %q, want working directory %q", out.String(), dir)
	}
}

func TestCapture_Stdout(t *testing.T) {
	r := New()
	got, err := r.Capture(context.Background(), "sh", "-c", "echo captured")
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if strings.TrimSpace(got) != "captured" {
		t.Errorf("Capture() = %q, want %q", got, "captured")
	}
}

func TestCapture_StderrTailInDiagnostic(t *testing.T) {
	r := New()
	_, err := r.Capture(context.Background(), "sh", "-c", "echo 'mkdir failed' >&2; exit 23")
	if !errdefs.IsExec(err) {
		t.Fatalf("Capture() error = %v, want ExecError", err)
	}
	if got := errdefs.ExitCode(err); got != 23 {
		t.Errorf("ExitCode = %d, want 23", got)
	}
	if !strings.Contains(err.Error(), "mkdir failed") {
		t.Errorf("error = %v, want stderr verbatim", err)
	}
}

func TestCapture_ToolNotFound(t *testing.T) {
	r := New()
	_, err := r.Capture(context.Background(), "sweepctl-no-such-binary-xyzzy")
	if !errdefs.IsNotFound(err) {
		t.Fatalf("Capture() error = %v, want ToolNotFoundError", err)
	}
}

func TestLastLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"empty", "", 3, ""},
		{"fewer than n", "a\nb\n", 3, "a\nb"},
		{"exactly n", "a\nb\nc", 3, "a\nb\nc"},
		{"more than n", "a\nb\nc\nd\n", 2, "c\nd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lastLines(tt.in, tt.n); got != tt.want {
				t.Errorf("lastLines(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
