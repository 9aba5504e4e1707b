package csvlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/AdrienBolling/bsuite-tsobs/logging"
)

func TestWriteFixesColumnsOnFirstRecord(t *testing.T) {
	dir := t.TempDir()

	logger, err := New("catch/0", dir, false)
	if err != nil {
		t.Fatal(err)
	}

	first := map[string]interface{}{
		"episode":        0,
		"episode_return": 1.0,
		"steps":          9,
	}
	if err := logger.Write(first); err != nil {
		t.Fatal(err)
	}
	second := map[string]interface{}{
		"episode":        1,
		"episode_return": -1.0,
		"steps":          18,
	}
	if err := logger.Write(second); err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(filepath.Join(dir,
		logging.RunName("catch/0")+".csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("wrong number of rows\n\twant(3)\n\thave(%v)", len(rows))
	}

	// Columns are the sorted keys of the first record
	wantHeader := []string{"episode", "episode_return", "steps"}
	for i, column := range wantHeader {
		if rows[0][i] != column {
			t.Errorf("wrong column %v\n\twant(%v)\n\thave(%v)", i, column,
				rows[0][i])
		}
	}

	if rows[1][0] != "0" || rows[2][0] != "1" {
		t.Errorf("wrong episode column: %v, %v", rows[1][0], rows[2][0])
	}
	if rows[1][1] != "1" || rows[2][1] != "-1" {
		t.Errorf("wrong return column: %v, %v", rows[1][1], rows[2][1])
	}
}

func TestNewRefusesToClobber(t *testing.T) {
	dir := t.TempDir()

	logger, err := New("bandit/0", dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := New("bandit/0", dir, false); err == nil {
		t.Error("expected error when results exist and overwrite not " +
			"requested")
	}

	logger, err = New("bandit/0", dir, true)
	if err != nil {
		t.Errorf("overwrite should clobber existing results: %v", err)
	}
	if logger != nil {
		logger.Close()
	}
}
