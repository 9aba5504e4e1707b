// Package pool implements fan-out of independent experiment runs.
// Each run gets its own fully isolated environment-agent-logger
// triple, so workers share no mutable state and need no coordination
// beyond joining at the end.
package pool

import (
	"sync"

	"github.com/rs/zerolog"
)

// Map runs fn once per id using at most workers concurrent workers and
// returns the error of each run, indexed like ids. A nil entry means
// the run completed.
func Map(log zerolog.Logger, ids []string, workers int,
	fn func(id string) error) []error {
	if workers <= 0 || workers > len(ids) {
		workers = len(ids)
	}

	errs := make([]error, len(ids))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				log.Info().Str("bsuite_id", ids[i]).Msg("starting run")
				errs[i] = fn(ids[i])
				if errs[i] != nil {
					log.Error().Str("bsuite_id", ids[i]).
						Err(errs[i]).Msg("run failed")
				} else {
					log.Info().Str("bsuite_id", ids[i]).Msg("run finished")
				}
			}
		}()
	}

	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return errs
}
