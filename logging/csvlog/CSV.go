// Package csvlog implements a metrics logger writing one CSV file per
// run. The column set is fixed by the keys of the first record
// written; later records are laid out in the same column order.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AdrienBolling/bsuite-tsobs/logging"
)

// Logger logs metric records to a CSV file under a save path
type Logger struct {
	file   *os.File
	writer *csv.Writer
	header []string
}

// New creates a new CSV Logger for a run, writing to
// savePath/<run name>.csv. Unless overwrite is given, New refuses to
// clobber an existing file.
func New(bsuiteID, savePath string, overwrite bool) (*Logger, error) {
	if err := os.MkdirAll(savePath, 0o755); err != nil {
		return nil, fmt.Errorf("new: could not create save path: %v", err)
	}

	filename := filepath.Join(savePath, logging.RunName(bsuiteID)+".csv")
	if !overwrite {
		if _, err := os.Stat(filename); err == nil {
			return nil, fmt.Errorf("new: results already exist at %v "+
				"and overwrite not requested", filename)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("new: could not create results file: %v", err)
	}

	return &Logger{
		file:   file,
		writer: csv.NewWriter(file),
	}, nil
}

// Write appends one record to the CSV file. The first record written
// determines the columns.
func (l *Logger) Write(data map[string]interface{}) error {
	if l.header == nil {
		l.header = make([]string, 0, len(data))
		for key := range data {
			l.header = append(l.header, key)
		}
		sort.Strings(l.header)

		if err := l.writer.Write(l.header); err != nil {
			return fmt.Errorf("write: could not write header: %v", err)
		}
	}

	row := make([]string, len(l.header))
	for i, key := range l.header {
		if value, ok := data[key]; ok {
			row[i] = fmt.Sprint(value)
		}
	}

	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("write: could not write record: %v", err)
	}
	l.writer.Flush()
	return l.writer.Error()
}

// Close flushes and closes the CSV file
func (l *Logger) Close() error {
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.file.Close()
		return fmt.Errorf("close: %v", err)
	}
	return l.file.Close()
}
