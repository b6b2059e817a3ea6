package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netrank/netrank/ranker"
	"github.com/netrank/netrank/ranker/trace"
)

var explain bool // Print the per-step decision trace

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Pick the best network for the scenario's request",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		r, err := newRanker(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		writeDecision(cmd.OutOrStdout(), s, r, explain)
	},
}

// writeDecision ranks the scenario once and prints the winner, plus every
// cascade step when verbose is set.
func writeDecision(w io.Writer, s *Scenario, r *ranker.Ranker, verbose bool) *trace.DecisionRecord {
	_, rec := r.Explain(s.Request, s.Candidates, s.Incumbent)
	winner := rec.Winner
	if winner == "" {
		winner = "none"
	}
	fmt.Fprintf(w, "request %s: winner=%s decided-by=%s\n", rec.RequestID, winner, rec.DecidedBy)
	if verbose {
		writeSteps(w, rec)
	}
	return rec
}

func writeSteps(w io.Writer, rec *trace.DecisionRecord) {
	fmt.Fprintf(w, "  satisfying: [%s]\n", strings.Join(rec.Satisfying, " "))
	for _, st := range rec.Steps {
		fmt.Fprintf(w, "  %-18s %-9s accepted=[%s] rejected=[%s]\n",
			st.Step, st.Outcome, strings.Join(st.Accepted, " "), strings.Join(st.Rejected, " "))
	}
}

func init() {
	rankCmd.Flags().BoolVar(&explain, "explain", false, "Print the per-step decision trace")
	rootCmd.AddCommand(rankCmd)
}
