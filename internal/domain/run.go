package domain

import (
	"encoding/json"
	"time"
)

// TerminalState names how an agent run ended.
type TerminalState string

// Terminal states of an agent run.
const (
	TerminalSuccess       TerminalState = "success"
	TerminalMaxIterations TerminalState = "max_iterations"
	TerminalError         TerminalState = "error"
)

// ToolInvocation is one entry in an agent run's append-only audit trail.
// Never mutated after creation.
type ToolInvocation struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
	Result    json.RawMessage `json:"result,omitempty"`
	Err       string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// RunResult is the structured outcome of one orchestration call.
// On TerminalError, Content carries a generic failure message and TraceID
// identifies the internal trace; partially validated content is never
// returned.
type RunResult struct {
	Content       json.RawMessage  `json:"content,omitempty"`
	TraceSummary  []ToolInvocation `json:"trace_summary"`
	TerminalState TerminalState    `json:"terminal_state"`
	Truncated     bool             `json:"truncated,omitempty"`
	TraceID       string           `json:"trace_id"`
}
