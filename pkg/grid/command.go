package grid

import (
	"fmt"
	"strings"

	"github.com/calligo/sweepctl/pkg/types"
)

// scriptKey routes the base command and is never rendered as a flag.
const scriptKey = "script"

// BuildCommand renders a base command plus ordered parameter sets into one
// executable command line.
//
// Each parameter renders as a long-form flag "--key value". Boolean true
// renders as a bare "--key"; boolean false is omitted entirely, never
// rendered as "--key false". Flag order follows the order of the given
// parameter sets, so a fixed experiment set followed by a grid combination
// produces a stable, assertable flag order.
func BuildCommand(base string, sets ...types.Params) string {
	parts := []string{base}
	for _, params := range sets {
		for _, p := range params {
			if p.Name == scriptKey {
				continue
			}
			switch v := p.Value.(type) {
			case bool:
				if v {
					parts = append(parts, "--"+p.Name)
				}
			default:
				parts = append(parts, fmt.Sprintf("--%s %v", p.Name, p.Value))
			}
		}
	}
	return strings.Join(parts, " ")
}
