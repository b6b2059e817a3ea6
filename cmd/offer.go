package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netrank/netrank/ranker"
	"github.com/netrank/netrank/ranker/trace"
)

var offerCmd = &cobra.Command{
	Use:   "offer",
	Short: "Check which of the scenario's offers might beat the current champion",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if len(s.Offers) == 0 {
			logrus.Fatalf("scenario %s has no offers", scenarioPath)
		}
		r, err := newRanker(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		writeOffers(cmd.OutOrStdout(), s, r)
	},
}

// writeOffers evaluates every offer against the scenario's champion and
// prints one line per offer.
func writeOffers(w io.Writer, s *Scenario, r *ranker.Ranker) []trace.OfferRecord {
	champion := s.Champion(r)
	records := make([]trace.OfferRecord, 0, len(s.Offers))
	for _, o := range s.Offers {
		ok, rec := r.ExplainOffer(s.Request, champion, o)
		verdict := "cannot-beat"
		if ok {
			verdict = "might-beat"
		}
		fmt.Fprintf(w, "%s: %s (%s)\n", rec.Offer, verdict, rec.Reason)
		records = append(records, *rec)
	}
	return records
}

func init() {
	rootCmd.AddCommand(offerCmd)
}
