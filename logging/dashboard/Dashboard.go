// Package dashboard implements a metrics logger forwarding records to
// a remote experiment-tracking service over HTTP. Creating a Logger
// opens exactly one remote run; every Write forwards one record to
// that run. There is no local buffering and no retry: a failed or
// hanging call is surfaced to, or blocks, the caller.
package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AdrienBolling/bsuite-tsobs/logging"
)

// Config describes the remote run a Logger opens
type Config struct {
	// BaseURL of the tracking service
	BaseURL string

	Project string
	Entity  string
	Group   string
	Tags    []string

	// RunConfig is forwarded once with the run-open request, for
	// example the experiment identifier and agent hyperparameters
	RunConfig map[string]interface{}
}

// Logger logs metric records to a remote tracking service
type Logger struct {
	client  *http.Client
	baseURL string
	runID   string
	log     zerolog.Logger
}

// openRequest is the payload of the run-open call
type openRequest struct {
	RunID   string                 `json:"run_id"`
	Name    string                 `json:"name"`
	Project string                 `json:"project"`
	Entity  string                 `json:"entity"`
	Group   string                 `json:"group"`
	Tags    []string               `json:"tags,omitempty"`
	Config  map[string]interface{} `json:"config,omitempty"`
}

// New creates a new dashboard Logger, opening one remote run named
// after the sanitized experiment identifier.
func New(bsuiteID string, c Config) (*Logger, error) {
	l := &Logger{
		client:  &http.Client{},
		baseURL: c.BaseURL,
		runID:   uuid.NewString(),
		log: zerolog.New(os.Stderr).With().
			Str("component", "dashboard").Logger(),
	}

	open := openRequest{
		RunID:   l.runID,
		Name:    logging.RunName(bsuiteID),
		Project: c.Project,
		Entity:  c.Entity,
		Group:   c.Group,
		Tags:    c.Tags,
		Config:  c.RunConfig,
	}
	if err := l.post("/api/runs", open); err != nil {
		return nil, fmt.Errorf("new: could not open remote run: %v", err)
	}
	l.log.Info().Str("run", open.Name).Str("run_id", l.runID).
		Msg("opened remote run")

	return l, nil
}

// Write forwards one record to the remote run
func (l *Logger) Write(data map[string]interface{}) error {
	path := fmt.Sprintf("/api/runs/%v/log", l.runID)
	if err := l.post(path, data); err != nil {
		return fmt.Errorf("write: %v", err)
	}
	return nil
}

// Close marks the remote run as finished
func (l *Logger) Close() error {
	path := fmt.Sprintf("/api/runs/%v/finish", l.runID)
	if err := l.post(path, struct{}{}); err != nil {
		return fmt.Errorf("close: %v", err)
	}
	return nil
}

// post sends one JSON payload to the tracking service
func (l *Logger) post(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("post: could not encode payload: %v", err)
	}

	resp, err := l.client.Post(l.baseURL+path, "application/json",
		bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post: tracking service returned %v for %v",
			resp.Status, path)
	}
	return nil
}
