// Package experiment implements functionality for running an
// experiment: driving one agent against one environment for a number
// of episodes and forwarding per-episode statistics to a metrics
// logger.
package experiment

import (
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/AdrienBolling/bsuite-tsobs/agent"
	env "github.com/AdrienBolling/bsuite-tsobs/environment"
	"github.com/AdrienBolling/bsuite-tsobs/logging"
	ts "github.com/AdrienBolling/bsuite-tsobs/timestep"
)

// LossReporter is an agent that can report the loss of its most
// recent learning step.
type LossReporter interface {
	LastLoss() float64
}

// Online runs an agent online against an environment. After every
// environment step the agent's update hook is fed the transition; when
// an episode finishes, one metrics record is written.
type Online struct {
	env    env.Environment
	agent  agent.Agent
	logger logging.Logger

	// maxEpisodeLength truncates episodes that run longer, 0 for no
	// cap
	maxEpisodeLength int
	verbose          bool

	totalSteps  int
	totalReturn float64
}

// NewOnline creates and returns a new online experiment of an agent on
// an environment, writing one record per episode to logger.
func NewOnline(e env.Environment, a agent.Agent, logger logging.Logger,
	maxEpisodeLength int, verbose bool) *Online {
	return &Online{
		env:              e,
		agent:            a,
		logger:           logger,
		maxEpisodeLength: maxEpisodeLength,
		verbose:          verbose,
	}
}

// RunEpisode runs a single episode of the experiment and writes its
// statistics.
func (o *Online) RunEpisode(episode int) error {
	step := o.env.Reset()

	var episodeLen int
	var episodeReturn float64
	for !step.Last() {
		action := o.agent.SelectAction(step)
		next, err := o.env.Step(action)
		if err != nil {
			return fmt.Errorf("runepisode: could not step environment: %v",
				err)
		}
		episodeLen++

		// Truncate over-long episodes before the agent sees the
		// transition, so the agent observes a Last step and flushes its
		// trajectory instead of carrying it into the next episode
		if o.maxEpisodeLength > 0 && episodeLen >= o.maxEpisodeLength &&
			!next.Last() {
			next = ts.Truncation(next)
		}

		if err := o.agent.Update(step, action, next); err != nil {
			return fmt.Errorf("runepisode: could not update agent: %v", err)
		}

		episodeReturn += next.Reward
		o.totalSteps++
		step = next
	}
	o.totalReturn += episodeReturn

	data := map[string]interface{}{
		"episode":        episode,
		"episode_len":    episodeLen,
		"episode_return": episodeReturn,
		"total_return":   o.totalReturn,
		"steps":          o.totalSteps,
	}
	if reporter, ok := o.agent.(LossReporter); ok {
		data["loss"] = reporter.LastLoss()
	}
	return o.logger.Write(data)
}

// Run runs the experiment for numEpisodes episodes
func (o *Online) Run(numEpisodes int) error {
	var bar *progressbar.ProgressBar
	if o.verbose {
		bar = progressbar.Default(int64(numEpisodes), "episodes")
	}

	for episode := 0; episode < numEpisodes; episode++ {
		if err := o.RunEpisode(episode); err != nil {
			return fmt.Errorf("run: episode %v: %v", episode, err)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	return nil
}
