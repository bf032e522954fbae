package model

// Fallback values used when discovery cannot parse a field from a
// process command line. The reconciler treats NameUnnamed specially:
// an unnamed process matches a definition on port alone.
const (
	PortUnknown = "Unknown"
	NameUnnamed = "Unnamed"
)

// TunnelKind classifies a tunnel by the protocol flag on its command line.
type TunnelKind string

const (
	KindHTTP   TunnelKind = "HTTP"
	KindCustom TunnelKind = "Custom"
)

// RunningTunnel is one live tunnel process observed by discovery.
// Instances are rebuilt fresh on every discovery pass and are never
// cached across menu iterations.
type RunningTunnel struct {
	PID        int        `json:"pid"`
	Port       string     `json:"port"`
	Name       string     `json:"name"`
	Kind       TunnelKind `json:"kind"`
	RawCommand string     `json:"raw_command"`
}

// PersistentDefinition is one auto-start entry stored by the external
// tunnel binary, as reported by its list query.
type PersistentDefinition struct {
	ID      string `json:"id"`
	RawArgs string `json:"raw_args"`
}

// MatchResult is the reconciler's verdict for one running process.
type MatchResult struct {
	IsPersistent bool   `json:"is_persistent"`
	PersistentID string `json:"persistent_id,omitempty"`
}

// CreateSpec captures the operator's choices for a new tunnel.
type CreateSpec struct {
	Port    string     `json:"port"`
	Kind    TunnelKind `json:"kind"`
	Name    string     `json:"name,omitempty"`
	Persist bool       `json:"persist"`
}

// ReloadOutcome records the per-definition result of a reload-all pass.
// Errors are carried as strings so outcomes serialize cleanly for
// reporting; empty means the step succeeded.
type ReloadOutcome struct {
	ID        string `json:"id"`
	RawArgs   string `json:"raw_args"`
	RemoveErr string `json:"remove_error,omitempty"`
	LaunchErr string `json:"launch_error,omitempty"`
}

// OK reports whether both the remove and relaunch steps succeeded.
func (o ReloadOutcome) OK() bool {
	return o.RemoveErr == "" && o.LaunchErr == ""
}
