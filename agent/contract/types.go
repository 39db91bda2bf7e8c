package contract

import (
	"fmt"
	"strings"
	"time"
)

type Plan struct {
	Reasoning  string `json:"reasoning"`
	Operations []Step `json:"operations"`
}

type Step struct {
	Step        int    `json:"step,omitempty"`
	Tool        string `json:"tool"`
	Function    string `json:"function"`
	Arguments   []any  `json:"arguments"`
	StoreAs     string `json:"store_as,omitempty"`
	Description string `json:"description,omitempty"`
}

// Label returns the description shown in progress output and the trace.
func (s Step) Label() string {
	if d := strings.TrimSpace(s.Description); d != "" {
		return d
	}
	return fmt.Sprintf("Execute %s", s.Function)
}

// QualifiedName returns "tool.function".
func (s Step) QualifiedName() string {
	return s.Tool + "." + s.Function
}

type TraceEntry struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Function    string `json:"function"`
	Arguments   []any  `json:"arguments"`
	Result      any    `json:"result"`
}

// Variable is one binding of the variable store, kept in first-write order.
type Variable struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type Report struct {
	RunID      string       `json:"run_id"`
	Query      string       `json:"query"`
	RawPlan    string       `json:"raw_plan,omitempty"`
	Plan       *Plan        `json:"plan,omitempty"`
	Trace      []TraceEntry `json:"trace"`
	Variables  []Variable   `json:"variables"`
	Result     any          `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	ErrorKind  ErrorKind    `json:"error_kind,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

func (r Report) Succeeded() bool {
	return r.Error == ""
}
