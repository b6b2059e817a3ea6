package trace

import "fmt"

// TraceLevel says how much of each decision a DecisionTrace keeps.
type TraceLevel string

const (
	// TraceLevelNone keeps nothing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions keeps the outcome of every decision but drops the
	// per-step partitions.
	TraceLevelDecisions TraceLevel = "decisions"
	// TraceLevelSteps keeps every record whole.
	TraceLevelSteps TraceLevel = "steps"
)

// ParseTraceLevel accepts the level names used on the command line. The empty
// string means TraceLevelNone.
func ParseTraceLevel(name string) (TraceLevel, error) {
	switch TraceLevel(name) {
	case "", TraceLevelNone:
		return TraceLevelNone, nil
	case TraceLevelDecisions, TraceLevelSteps:
		return TraceLevel(name), nil
	}
	return "", fmt.Errorf("unknown trace level %q (want none, decisions or steps)", name)
}

// DecisionTrace collects decision records across many ranking calls.
type DecisionTrace struct {
	Level     TraceLevel
	Decisions []DecisionRecord
	Offers    []OfferRecord
}

// NewDecisionTrace creates a DecisionTrace ready for recording.
func NewDecisionTrace(level TraceLevel) *DecisionTrace {
	return &DecisionTrace{
		Level:     level,
		Decisions: make([]DecisionRecord, 0),
		Offers:    make([]OfferRecord, 0),
	}
}

// Enabled reports whether the trace keeps anything. Nil traces keep nothing.
func (dt *DecisionTrace) Enabled() bool {
	return dt != nil && (dt.Level == TraceLevelDecisions || dt.Level == TraceLevelSteps)
}

// RecordDecision keeps record as far as the level allows.
func (dt *DecisionTrace) RecordDecision(record DecisionRecord) {
	if !dt.Enabled() {
		return
	}
	if dt.Level != TraceLevelSteps {
		record.Steps = nil
	}
	dt.Decisions = append(dt.Decisions, record)
}

// RecordOffer keeps record as far as the level allows.
func (dt *DecisionTrace) RecordOffer(record OfferRecord) {
	if !dt.Enabled() {
		return
	}
	if dt.Level != TraceLevelSteps && record.Decision != nil {
		d := *record.Decision
		d.Steps = nil
		record.Decision = &d
	}
	dt.Offers = append(dt.Offers, record)
}
