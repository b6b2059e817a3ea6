package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/netrank/netrank/ranker"
	"github.com/netrank/netrank/ranker/trace"
	"github.com/netrank/netrank/ranker/watch"
)

var (
	metricsAddr   string        // Listen address for /metrics; empty disables it
	watchDebounce time.Duration // Quiet period before a changed config is re-read
	traceLevel    string        // How much of each re-rank to keep for the exit summary
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-rank the scenario every time the configuration file changes",
	Run: func(cmd *cobra.Command, args []string) {
		if configPath == "" {
			logrus.Fatalf("watch requires --config")
		}
		level, err := trace.ParseTraceLevel(traceLevel)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		s, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		dt, err := runWatch(ctx, cmd, s, reg, level)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !dt.Enabled() {
			return
		}
		sum := trace.Summarize(dt)
		logrus.Infof("watch stopped after %d decisions (%d distinct winners, %d with no winner, %d of %d offers might beat)",
			sum.TotalDecisions, sum.UniqueWinners, sum.NoWinnerCount, sum.OffersAccepted, sum.OffersEvaluated)
		for step, n := range sum.DecidedBy {
			logrus.Debugf("  decided by %s: %d", step, n)
		}
	},
}

// runWatch loads the configuration, ranks once, then re-ranks the scenario
// and re-checks its offers on every reload until ctx is done. What each
// re-rank leaves in the returned trace depends on level. The config watcher
// and the metrics server run in one errgroup; either failing stops both.
func runWatch(ctx context.Context, cmd *cobra.Command, s *Scenario, reg *prometheus.Registry, level trace.TraceLevel) (*trace.DecisionTrace, error) {
	r := ranker.NewRanker(ranker.Configuration{}, ranker.WithMetrics(ranker.NewMetrics(reg)))
	dt := trace.NewDecisionTrace(level)
	out := cmd.OutOrStdout()

	// OnReload runs on the watcher goroutine only; dt needs no lock.
	w, err := watch.New(configPath, r, watch.Options{
		Debounce: watchDebounce,
		OnReload: func(ranker.Configuration) {
			dt.RecordDecision(*writeDecision(out, s, r, explain))
			for _, rec := range writeOffers(out, s, r) {
				dt.RecordOffer(rec)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	if err := w.Load(); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logrus.Infof("serving metrics on %s", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return dt, g.Wait()
}

func init() {
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for Prometheus /metrics (empty disables)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultOptions().Debounce, "Quiet period before a changed config is re-read")
	watchCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelDecisions), "Decision detail kept for the exit summary (none, decisions, steps)")
	watchCmd.Flags().BoolVar(&explain, "explain", false, "Print the per-step decision trace on every re-rank")
	rootCmd.AddCommand(watchCmd)
}
