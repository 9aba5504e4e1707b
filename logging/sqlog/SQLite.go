// Package sqlog implements a metrics logger writing to an embedded
// SQLite database. All runs share one database file under the save
// path; records are keyed by run name and stored as JSON payloads so
// that runs with different metric sets coexist in one table.
package sqlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AdrienBolling/bsuite-tsobs/logging"
)

const createTable = `CREATE TABLE IF NOT EXISTS logs (
	run  TEXT NOT NULL,
	step INTEGER NOT NULL,
	data TEXT NOT NULL
)`

// Logger logs metric records to an embedded SQLite database
type Logger struct {
	db   *sql.DB
	run  string
	step int
}

// New creates a new SQLite Logger for a run, writing to
// savePath/bsuite.db. With overwrite, records of a previous run with
// the same name are dropped.
func New(bsuiteID, savePath string, overwrite bool) (*Logger, error) {
	if err := os.MkdirAll(savePath, 0o755); err != nil {
		return nil, fmt.Errorf("new: could not create save path: %v", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(savePath, "bsuite.db"))
	if err != nil {
		return nil, fmt.Errorf("new: could not open database: %v", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("new: could not create log table: %v", err)
	}

	run := logging.RunName(bsuiteID)
	if overwrite {
		if _, err := db.Exec("DELETE FROM logs WHERE run = ?", run); err != nil {
			db.Close()
			return nil, fmt.Errorf("new: could not clear previous run: %v",
				err)
		}
	} else {
		var count int
		row := db.QueryRow("SELECT COUNT(*) FROM logs WHERE run = ?", run)
		if err := row.Scan(&count); err != nil {
			db.Close()
			return nil, fmt.Errorf("new: could not query previous run: %v",
				err)
		}
		if count > 0 {
			db.Close()
			return nil, fmt.Errorf("new: results already exist for run %v "+
				"and overwrite not requested", run)
		}
	}

	return &Logger{db: db, run: run}, nil
}

// Write inserts one record into the log table
func (l *Logger) Write(data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("write: could not encode record: %v", err)
	}

	_, err = l.db.Exec("INSERT INTO logs (run, step, data) VALUES (?, ?, ?)",
		l.run, l.step, string(payload))
	if err != nil {
		return fmt.Errorf("write: could not insert record: %v", err)
	}
	l.step++
	return nil
}

// Close closes the database
func (l *Logger) Close() error {
	return l.db.Close()
}
