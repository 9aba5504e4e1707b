package experiment

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/AdrienBolling/bsuite-tsobs/agent/actorcritic"
	"github.com/AdrienBolling/bsuite-tsobs/logging"
	"github.com/AdrienBolling/bsuite-tsobs/logging/csvlog"
	"github.com/AdrienBolling/bsuite-tsobs/logging/dashboard"
	"github.com/AdrienBolling/bsuite-tsobs/logging/sqlog"
	"github.com/AdrienBolling/bsuite-tsobs/logging/terminal"
	"github.com/AdrienBolling/bsuite-tsobs/sweep"
	"github.com/AdrienBolling/bsuite-tsobs/utils/pool"
)

// Config is the full configuration of an experiment launch, passed by
// value through the harness so that no global state configures a run.
type Config struct {
	// BsuiteID is the experiment identifier to run, or the name of a
	// registered sweep group to fan out over
	BsuiteID string

	SavePath    string
	LoggingMode logging.Mode
	Overwrite   bool

	// NumEpisodes overrides the environment's default episode count
	// when positive
	NumEpisodes int

	Verbose bool
	Seed    uint64

	// MaxEpisodeLength truncates episodes that run longer, 0 for no
	// cap
	MaxEpisodeLength int

	// Workers bounds sweep fan-out, 0 for one worker per run
	Workers int

	// Dashboard backend settings
	DashboardURL string
	Project      string
	Entity       string
	Group        string
	Tags         []string
}

// Launch runs the experiment(s) named by a Config: a single run when
// BsuiteID is a registered identifier, or one isolated run per
// identifier of a sweep group when BsuiteID names one.
func Launch(c Config) error {
	ids, isGroup := sweep.Group(c.BsuiteID)
	if !isGroup {
		return Run(c)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
		Timestamp().Logger()

	errs := pool.Map(log, ids, c.Workers, func(id string) error {
		runConfig := c
		runConfig.BsuiteID = id
		// Progress bars from concurrent runs would interleave
		runConfig.Verbose = false
		return Run(runConfig)
	})

	var failed int
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("launch: %v of %v runs failed", failed, len(ids))
	}
	return nil
}

// Run runs a single experiment to completion: load the environment the
// identifier names, build the default actor-critic agent for it, open
// the configured logger, and drive the agent for the configured number
// of episodes.
func Run(c Config) error {
	environment, err := sweep.Load(c.BsuiteID)
	if err != nil {
		return fmt.Errorf("run: %v", err)
	}

	a, err := actorcritic.Default(environment, c.Seed)
	if err != nil {
		return fmt.Errorf("run: could not create agent: %v", err)
	}

	numEpisodes := c.NumEpisodes
	if numEpisodes <= 0 {
		numEpisodes = environment.NumEpisodes()
	}

	logger, err := newLogger(c, numEpisodes)
	if err != nil {
		return fmt.Errorf("run: could not create logger: %v", err)
	}

	online := NewOnline(environment, a, logger, c.MaxEpisodeLength,
		c.Verbose)
	if err := online.Run(numEpisodes); err != nil {
		logger.Close()
		return fmt.Errorf("run: %v", err)
	}

	if err := logger.Close(); err != nil {
		return fmt.Errorf("run: could not close logger: %v", err)
	}
	return nil
}

// newLogger creates the metrics logger a Config selects
func newLogger(c Config, numEpisodes int) (logging.Logger, error) {
	switch c.LoggingMode {
	case logging.CSV:
		return csvlog.New(c.BsuiteID, c.SavePath, c.Overwrite)

	case logging.SQLite:
		return sqlog.New(c.BsuiteID, c.SavePath, c.Overwrite)

	case logging.Terminal:
		return terminal.New(c.BsuiteID), nil

	case logging.Dashboard:
		return dashboard.New(c.BsuiteID, dashboard.Config{
			BaseURL: c.DashboardURL,
			Project: c.Project,
			Entity:  c.Entity,
			Group:   c.Group,
			Tags:    c.Tags,
			RunConfig: map[string]interface{}{
				"bsuite_id":    c.BsuiteID,
				"num_episodes": numEpisodes,
				"policy_algo":  "actor_critic",
			},
		})
	}

	return nil, fmt.Errorf("newlogger: no such logging mode %q",
		c.LoggingMode)
}
