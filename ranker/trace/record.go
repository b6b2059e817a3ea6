// Package trace provides decision-trace recording for network ranking.
// This package has no dependencies on ranker/; it stores pure data types.
package trace

// StepOutcome describes what one cascade step did to the candidate set.
type StepOutcome string

const (
	// OutcomeDecided means exactly one candidate matched and won.
	OutcomeDecided StepOutcome = "decided"
	// OutcomeNarrowed means the losers were dropped and several candidates remain.
	OutcomeNarrowed StepOutcome = "narrowed"
	// OutcomeUnanimous means every candidate matched; nothing changed.
	OutcomeUnanimous StepOutcome = "unanimous"
	// OutcomeNoMatch means no candidate matched; nothing changed.
	OutcomeNoMatch StepOutcome = "no-match"
)

// ClassifyStep derives the outcome of a partition from its sizes.
func ClassifyStep(accepted, rejected int) StepOutcome {
	switch {
	case accepted == 1:
		return OutcomeDecided
	case accepted == 0:
		return OutcomeNoMatch
	case rejected == 0:
		return OutcomeUnanimous
	default:
		return OutcomeNarrowed
	}
}

// StepRecord captures one partition of the policy cascade.
type StepRecord struct {
	Step     string
	Accepted []string
	Rejected []string
	Outcome  StepOutcome
}

// DecisionRecord captures a single best-network decision and how it was reached.
type DecisionRecord struct {
	RequestID             string
	Candidates            []string // candidates passed in, before filtering
	Satisfying            []string // candidates surviving the request filter
	Incumbent             string   // empty if none
	Winner                string   // empty if no network satisfies the request
	DecidedBy             string   // name of the step that produced the winner
	ActivelyPreferBadWiFi bool     // configuration snapshot used for the decision
	Steps                 []StepRecord
}

// AddStep appends a step record. Safe on a nil receiver, which records nothing.
func (d *DecisionRecord) AddStep(step string, accepted, rejected []string) {
	if d == nil {
		return
	}
	d.Steps = append(d.Steps, StepRecord{
		Step:     step,
		Accepted: accepted,
		Rejected: rejected,
		Outcome:  ClassifyStep(len(accepted), len(rejected)),
	})
}

// OfferRecord captures one might-beat evaluation of an offer against a champion.
type OfferRecord struct {
	RequestID string
	Offer     string
	Champion  string // empty if no network currently satisfies the request
	MightBeat bool
	Reason    string
	Decision  *DecisionRecord // nil unless the cascade had to run
}
