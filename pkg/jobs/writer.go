package jobs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/calligo/sweepctl/pkg/types"
)

// ScriptExt is the file extension of generated job scripts.
const ScriptExt = ".slurm"

// minPadWidth keeps small sweeps lexicographically sortable and stable in
// width when they grow.
const minPadWidth = 4

// PadWidth returns the zero-padding width for count jobs: wide enough that
// lexicographic file order equals generation order.
func PadWidth(count int) int {
	width := 1
	for n := count - 1; n >= 10; n /= 10 {
		width++
	}
	if width < minPadWidth {
		width = minPadWidth
	}
	return width
}

// FormatIndex renders a job index zero-padded to the width for count jobs.
func FormatIndex(i, count int) string {
	return fmt.Sprintf("%0*d", PadWidth(count), i)
}

// Writer persists rendered jobs under a deterministic directory.
type Writer struct {
	// Dir is the output directory, typically runs/<cluster>/<experiment>.
	Dir string
}

// Write persists each job to run_<index>.slurm under the writer's
// directory, creating it if absent. Colliding files from a previous
// generation are overwritten: regenerating a sweep is a full,
// deterministic replace. The written paths are returned in job order.
func (w *Writer) Write(jobs []types.RenderedJob) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create runs directory")
	}

	paths := make([]string, 0, len(jobs))
	for _, job := range jobs {
		path := filepath.Join(w.Dir, "run_"+job.Index+ScriptExt)
		if err := os.WriteFile(path, []byte(job.Script), 0o644); err != nil {
			return paths, errors.Wrapf(err, "write job script %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
