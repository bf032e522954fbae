// Package reconcile correlates a running tunnel process with the external
// binary's persistent definitions.
//
// The two sources share no identifier: the process table exposes a pid and a
// command line, the registry exposes an id and a saved argument string. The
// only overlap is the flags themselves, so matching is a substring heuristic
// on port and name. Ports can be reused and names can collide, which makes
// false positives and negatives possible; that ambiguity is inherent to the
// domain and deliberately not papered over here (doctor reports duplicate
// ports so the operator can see when the heuristic is on thin ice).
package reconcile

import (
	"strings"

	"github.com/treykane/pitunnel-manager/internal/model"
)

// Match decides whether proc corresponds to one of defs.
//
// A definition matches iff its raw argument string contains the exact
// substring "--port=<proc.Port>", and either the process is unnamed or the
// arguments also contain "--name=<proc.Name>". The first matching definition
// wins, in registry order. A process with an unknown port can never match:
// "--port=Unknown" appears in no real argument string.
func Match(proc model.RunningTunnel, defs []model.PersistentDefinition) model.MatchResult {
	portNeedle := "--port=" + proc.Port
	nameNeedle := "--name=" + proc.Name
	for _, def := range defs {
		if !strings.Contains(def.RawArgs, portNeedle) {
			continue
		}
		if proc.Name != model.NameUnnamed && !strings.Contains(def.RawArgs, nameNeedle) {
			continue
		}
		return model.MatchResult{IsPersistent: true, PersistentID: def.ID}
	}
	return model.MatchResult{}
}
