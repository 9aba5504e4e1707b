// Package logging defines the metrics logger interface shared by all
// logging backends, along with the run-name convention that keys a
// run's records in every backend.
package logging

import (
	"fmt"
	"strings"

	"github.com/AdrienBolling/bsuite-tsobs/sweep"
)

// Logger forwards one structured record of scalar metrics per Write
// call to some backend. Loggers do not buffer or retry beyond what the
// backend itself offers; a failed Write is the caller's problem.
type Logger interface {
	Write(data map[string]interface{}) error
	Close() error
}

const (
	// SafeSeparator replaces sweep.Separator in run names. The
	// default '/' symbol is dangerous for file systems!
	SafeSeparator = "-"

	// InitialSeparator separates the run-name prefix from the
	// sanitized experiment identifier
	InitialSeparator = "_-_"

	// Prefix starts every run name
	Prefix = "bsuite_id" + InitialSeparator
)

// RunName constructs the name under which a run's records are keyed:
// the sanitized experiment identifier prefixed with Prefix.
func RunName(bsuiteID string) string {
	safeID := strings.ReplaceAll(bsuiteID, sweep.Separator, SafeSeparator)
	return Prefix + safeID
}

// Mode selects a logging backend
type Mode string

// Available logging backends
const (
	CSV       Mode = "csv"
	SQLite    Mode = "sqlite"
	Terminal  Mode = "terminal"
	Dashboard Mode = "dashboard"
)

// ParseMode returns the Mode named by a string
func ParseMode(mode string) (Mode, error) {
	switch Mode(mode) {
	case CSV, SQLite, Terminal, Dashboard:
		return Mode(mode), nil
	}
	return "", fmt.Errorf("parsemode: no such logging mode %q "+
		"\n\twant(%v|%v|%v|%v)", mode, CSV, SQLite, Terminal, Dashboard)
}
