// Package terminal implements a metrics logger printing records to
// standard output.
package terminal

import (
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/AdrienBolling/bsuite-tsobs/logging"
)

// Logger logs metric records to the terminal, one event per record
type Logger struct {
	log zerolog.Logger
}

// New creates a new terminal Logger for a run
func New(bsuiteID string) *Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stdout}
	log := zerolog.New(writer).With().
		Str("run", logging.RunName(bsuiteID)).
		Logger()

	return &Logger{log: log}
}

// Write prints one record. Fields are printed in sorted key order so
// that successive records line up.
func (l *Logger) Write(data map[string]interface{}) error {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	event := l.log.Info()
	for _, key := range keys {
		event = event.Interface(key, data[key])
	}
	event.Msg("")
	return nil
}

// Close implements the logging.Logger interface; there is nothing to
// close.
func (l *Logger) Close() error {
	return nil
}
