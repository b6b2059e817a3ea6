package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netrank/netrank/ranker"
)

var (
	logLevel     string // Log verbosity level
	scenarioPath string // Path to the scenario YAML
	configPath   string // Path to the ranker configuration YAML
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "netrank",
	Short: "Rank candidate networks the way a connectivity service picks its default",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRanker builds a Ranker from the --config file, or the default
// configuration when none is given.
func newRanker(path string, opts ...ranker.Option) (*ranker.Ranker, error) {
	conf := ranker.Configuration{}
	if path != "" {
		var err error
		if conf, err = ranker.LoadConfiguration(path); err != nil {
			return nil, err
		}
	}
	return ranker.NewRanker(conf, opts...), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Path to scenario YAML (request, candidates, incumbent, offers)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to ranker configuration YAML")
	_ = rootCmd.MarkPersistentFlagRequired("scenario")
}
