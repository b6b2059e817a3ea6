package trace

// TraceSummary aggregates statistics from a DecisionTrace.
type TraceSummary struct {
	TotalDecisions     int
	NoWinnerCount      int
	UniqueWinners      int
	WinnerDistribution map[string]int // network ID → number of decisions won
	DecidedBy          map[string]int // step name → number of decisions it settled
	OffersEvaluated    int
	OffersAccepted     int
}

// Summarize computes aggregate statistics from a DecisionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(dt *DecisionTrace) *TraceSummary {
	summary := &TraceSummary{
		WinnerDistribution: make(map[string]int),
		DecidedBy:          make(map[string]int),
	}
	if dt == nil {
		return summary
	}

	summary.TotalDecisions = len(dt.Decisions)
	for _, d := range dt.Decisions {
		summary.DecidedBy[d.DecidedBy]++
		if d.Winner == "" {
			summary.NoWinnerCount++
			continue
		}
		summary.WinnerDistribution[d.Winner]++
	}
	summary.UniqueWinners = len(summary.WinnerDistribution)

	summary.OffersEvaluated = len(dt.Offers)
	for _, o := range dt.Offers {
		if o.MightBeat {
			summary.OffersAccepted++
		}
	}
	return summary
}
