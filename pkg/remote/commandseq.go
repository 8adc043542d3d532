package remote

import "strings"

// CommandSeq is an ordered list of shell commands destined for one remote
// session.
type CommandSeq []string

// Join renders the sequence as a single shell line using short-circuiting
// AND: each command runs only if every previous one succeeded, so a failed
// initialization command aborts before the target command runs.
func (s CommandSeq) Join() string {
	parts := make([]string, 0, len(s))
	for _, cmd := range s {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		parts = append(parts, cmd)
	}
	return strings.Join(parts, " && ")
}
