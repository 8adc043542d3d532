package template

import (
	_ "embed"
	"fmt"
	"strings"
)

// DefaultSlurm is the built-in scheduler script template. Projects may
// override it with their own template file; the placeholder names are the
// contract.
//
//go:embed slurm.tmpl
var DefaultSlurm string

// Render substitutes {{NAME}} placeholders in text with the string form of
// the corresponding value.
//
// Unresolved placeholders are left verbatim in the output, not treated as
// an error: callers own the completeness of the variable set. A script
// that still contains a literal placeholder is therefore visible in the
// output rather than silently mangled.
func Render(text string, vars map[string]interface{}) string {
	rendered := text
	for name, value := range vars {
		rendered = strings.ReplaceAll(rendered, "{{"+name+"}}", fmt.Sprint(value))
	}
	return rendered
}
