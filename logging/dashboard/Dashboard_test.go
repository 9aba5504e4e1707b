package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AdrienBolling/bsuite-tsobs/logging"
)

// trackingService fakes the remote tracking API, counting calls per
// endpoint and recording the payloads it receives.
type trackingService struct {
	opens, logs, finishes int

	openPayload map[string]interface{}
	logPaths    []string
	logPayloads []map[string]interface{}
}

func (s *trackingService) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]interface{}{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		switch {
		case r.URL.Path == "/api/runs":
			s.opens++
			s.openPayload = payload
		case strings.HasSuffix(r.URL.Path, "/log"):
			s.logs++
			s.logPaths = append(s.logPaths, r.URL.Path)
			s.logPayloads = append(s.logPayloads, payload)
		case strings.HasSuffix(r.URL.Path, "/finish"):
			s.finishes++
		default:
			http.NotFound(w, r)
		}
	})
}

func TestLoggerLifecycle(t *testing.T) {
	service := &trackingService{}
	server := httptest.NewServer(service.handler())
	defer server.Close()

	logger, err := New("catch/0", Config{
		BaseURL: server.URL,
		Project: "bsuite",
		Entity:  "an-entity",
		Group:   "a-group",
		Tags:    []string{"baseline"},
		RunConfig: map[string]interface{}{
			"policy_algo": "actor_critic",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Creating the logger opens exactly one remote run, named after the
	// sanitized experiment identifier
	if service.opens != 1 {
		t.Fatalf("wrong number of run-open calls\n\twant(1)\n\thave(%v)",
			service.opens)
	}
	if name := service.openPayload["name"]; name != logging.RunName("catch/0") {
		t.Errorf("wrong remote run name\n\twant(%v)\n\thave(%v)",
			logging.RunName("catch/0"), name)
	}
	if project := service.openPayload["project"]; project != "bsuite" {
		t.Errorf("wrong project\n\twant(bsuite)\n\thave(%v)", project)
	}
	config, ok := service.openPayload["config"].(map[string]interface{})
	if !ok || config["policy_algo"] != "actor_critic" {
		t.Errorf("run config not forwarded with the open call: %v",
			service.openPayload["config"])
	}
	runID, ok := service.openPayload["run_id"].(string)
	if !ok || runID == "" {
		t.Fatal("run-open call carried no run id")
	}

	// Every Write forwards exactly one record to the opened run
	for i := 0; i < 3; i++ {
		record := map[string]interface{}{
			"episode":        i,
			"episode_return": float64(i),
		}
		if err := logger.Write(record); err != nil {
			t.Fatal(err)
		}
	}
	if service.logs != 3 {
		t.Fatalf("wrong number of log calls\n\twant(3)\n\thave(%v)",
			service.logs)
	}
	wantPath := fmt.Sprintf("/api/runs/%v/log", runID)
	for i, path := range service.logPaths {
		if path != wantPath {
			t.Errorf("record %v logged to the wrong run"+
				"\n\twant(%v)\n\thave(%v)", i, wantPath, path)
		}
	}
	if service.logPayloads[2]["episode"] != 2.0 {
		t.Errorf("wrong record forwarded: %v", service.logPayloads[2])
	}

	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}
	if service.finishes != 1 {
		t.Errorf("wrong number of finish calls\n\twant(1)\n\thave(%v)",
			service.finishes)
	}
}

func TestNewSurfacesServiceErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no capacity", http.StatusServiceUnavailable)
		}))
	defer server.Close()

	if _, err := New("catch/0", Config{BaseURL: server.URL}); err == nil {
		t.Error("expected error when the run-open call is rejected")
	}
}

func TestWriteSurfacesServiceErrors(t *testing.T) {
	var opened bool
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if !opened {
				opened = true
				return
			}
			http.Error(w, "gone away", http.StatusBadGateway)
		}))
	defer server.Close()

	logger, err := New("catch/0", Config{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	if err := logger.Write(map[string]interface{}{"episode": 0}); err == nil {
		t.Error("expected error when the log call is rejected")
	}
}
