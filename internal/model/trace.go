package model

// TraceEntry records the outcome of one scenario step.
type TraceEntry struct {
	Step     int      `json:"step" yaml:"step"`
	Action   string   `json:"action" yaml:"action"`
	Target   string   `json:"target,omitempty" yaml:"target,omitempty"`
	Events   []string `json:"events,omitempty" yaml:"events,omitempty"`
	Stack    []string `json:"stack" yaml:"stack"`
	Queue    []string `json:"queue" yaml:"queue"`
	Current  string   `json:"current,omitempty" yaml:"current,omitempty"`
	HasPopup bool     `json:"has_popup" yaml:"has_popup"`
	Overlay  bool     `json:"overlay" yaml:"overlay"`
	Result   string   `json:"result,omitempty" yaml:"result,omitempty"` // Return value or error text
}

// Trace is the record of a scenario run.
type Trace struct {
	Name    string       `json:"name" yaml:"name"`
	Entries []TraceEntry `json:"entries" yaml:"entries"`
	Final   Snapshot     `json:"final" yaml:"final"`
}
