package harness

import (
	"github.com/roach88/recstore/internal/record"
)

// TraceEvent is the observed outcome of one step.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Op      string         `json:"op"`
	ID      string         `json:"id"`
	Outcome string         `json:"outcome"`
	Record  *record.Record `json:"record,omitempty"`

	// Race steps only.
	Writers     int `json:"writers,omitempty"`
	OK          int `json:"ok,omitempty"`
	DuplicateID int `json:"duplicate_id,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step matched its expectation.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in step order.
	Trace []TraceEvent `json:"trace"`

	// Failures describes each mismatched expectation.
	Failures []string `json:"failures,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Failures: []string{},
	}
}

// AddFailure records a mismatch and marks the result as failed.
func (r *Result) AddFailure(msg string) {
	r.Failures = append(r.Failures, msg)
	r.Pass = false
}

func (r *Result) addEvent(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}

// canonical converts an event to a map for canonical.Marshal.
func (e TraceEvent) canonical() map[string]any {
	m := map[string]any{
		"seq":     e.Seq,
		"op":      e.Op,
		"id":      e.ID,
		"outcome": e.Outcome,
	}
	if e.Record != nil {
		m["record"] = map[string]any{
			"id":       e.Record.ID,
			"name":     e.Record.Name,
			"year":     e.Record.Year,
			"was_good": e.Record.WasGood,
		}
	}
	if e.Op == OpRace {
		m["writers"] = e.Writers
		m["ok"] = e.OK
		m["duplicate_id"] = e.DuplicateID
	}
	return m
}
