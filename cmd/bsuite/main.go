// Command bsuite runs actor-critic experiments on registered bsuite
// environments, logging per-episode metrics to the selected backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AdrienBolling/bsuite-tsobs/experiment"
	"github.com/AdrienBolling/bsuite-tsobs/logging"
	"github.com/AdrienBolling/bsuite-tsobs/sweep"
)

var flags struct {
	bsuiteID         string
	savePath         string
	loggingMode      string
	overwrite        bool
	numEpisodes      int
	verbose          bool
	seed             uint64
	maxEpisodeLength int
	workers          int

	dashboardURL string
	project      string
	entity       string
	group        string
	tags         []string
}

var rootCmd = &cobra.Command{
	Use:   "bsuite",
	Short: "run actor-critic experiments on bsuite environments",
	Long: `Run a single experiment by identifier (for example catch/0),
or every registered configuration of an environment by group name
(catch, bandit, or SWEEP for everything).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := logging.ParseMode(flags.loggingMode)
		if err != nil {
			return err
		}

		if _, isGroup := sweep.Group(flags.bsuiteID); !isGroup &&
			!sweep.Registered(flags.bsuiteID) {
			return fmt.Errorf("no such experiment or group %q",
				flags.bsuiteID)
		}

		return experiment.Launch(experiment.Config{
			BsuiteID:         flags.bsuiteID,
			SavePath:         flags.savePath,
			LoggingMode:      mode,
			Overwrite:        flags.overwrite,
			NumEpisodes:      flags.numEpisodes,
			Verbose:          flags.verbose,
			Seed:             flags.seed,
			MaxEpisodeLength: flags.maxEpisodeLength,
			Workers:          flags.workers,
			DashboardURL:     flags.dashboardURL,
			Project:          flags.project,
			Entity:           flags.entity,
			Group:            flags.group,
			Tags:             flags.tags,
		})
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&flags.bsuiteID, "bsuite-id", "catch/0",
		"experiment identifier or group name to run")
	rootCmd.Flags().StringVar(&flags.savePath, "save-path", "results",
		"directory for csv and sqlite results")
	rootCmd.Flags().StringVar(&flags.loggingMode, "logging-mode",
		string(logging.CSV), "metrics backend (csv|sqlite|terminal|dashboard)")
	rootCmd.Flags().BoolVar(&flags.overwrite, "overwrite", false,
		"overwrite existing results of the same run")
	rootCmd.Flags().IntVar(&flags.numEpisodes, "num-episodes", 0,
		"episodes to run, 0 for the environment default")
	rootCmd.Flags().BoolVar(&flags.verbose, "verbose", false,
		"show a progress bar (single runs only)")
	rootCmd.Flags().Uint64Var(&flags.seed, "seed", 0,
		"agent seed for weight init and action sampling")
	rootCmd.Flags().IntVar(&flags.maxEpisodeLength, "max-episode-length",
		0, "truncate episodes longer than this, 0 for no cap")
	rootCmd.Flags().IntVar(&flags.workers, "workers", 0,
		"concurrent runs in group mode, 0 for one per run")

	rootCmd.Flags().StringVar(&flags.dashboardURL, "dashboard-url",
		"http://localhost:8080", "base URL of the tracking service")
	rootCmd.Flags().StringVar(&flags.project, "project-name", "bsuite",
		"tracking project name")
	rootCmd.Flags().StringVar(&flags.entity, "project-entity", "",
		"tracking entity")
	rootCmd.Flags().StringVar(&flags.group, "project-group", "",
		"tracking run group")
	rootCmd.Flags().StringSliceVar(&flags.tags, "project-tags", nil,
		"tracking run tags")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
