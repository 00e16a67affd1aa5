// Package export writes run results to local files.
package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/ports"
)

// CSVSink writes one CSV file per table under <dir>/<site>_<run id>/.
type CSVSink struct {
	dir string
}

var _ ports.ResultSink = (*CSVSink)(nil)

// NewCSVSink roots output at dir.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir}
}

// RunDir is the directory a run's tables are written to.
func (s *CSVSink) RunDir(results domain.Results) string {
	return filepath.Join(s.dir, runName(results))
}

// WriteResults implements ports.ResultSink.
func (s *CSVSink) WriteResults(_ context.Context, results domain.Results) error {
	dir := s.RunDir(results)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, table := range results.Tables() {
		if err := writeCSV(filepath.Join(dir, FileName(table.Name)+".csv"), table); err != nil {
			return fmt.Errorf("write %s: %w", table.Name, err)
		}
	}
	return nil
}

func writeCSV(path string, table domain.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return err
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return err
	}
	return w.Error()
}

// NDJSONSink writes every row of every table as one JSON object per line
// into <dir>/<site>_<run id>.ndjson.
type NDJSONSink struct {
	dir string
}

var _ ports.ResultSink = (*NDJSONSink)(nil)

// NewNDJSONSink roots output at dir.
func NewNDJSONSink(dir string) *NDJSONSink {
	return &NDJSONSink{dir: dir}
}

// Path is the file a run is written to.
func (s *NDJSONSink) Path(results domain.Results) string {
	return filepath.Join(s.dir, runName(results)+".ndjson")
}

type ndjsonRow struct {
	RunID string            `json:"run_id"`
	Site  string            `json:"site"`
	Table string            `json:"table"`
	Row   map[string]string `json:"row"`
}

// WriteResults implements ports.ResultSink.
func (s *NDJSONSink) WriteResults(_ context.Context, results domain.Results) (err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(s.Path(results))
	if err != nil {
		return fmt.Errorf("create ndjson: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close ndjson: %w", closeErr)
		}
	}()

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	for _, table := range results.Tables() {
		for _, row := range table.Rows {
			record := ndjsonRow{RunID: results.RunID, Site: results.Site, Table: table.Name, Row: make(map[string]string, len(row))}
			for i, col := range table.Columns {
				if i < len(row) {
					record.Row[col] = row[i]
				}
			}
			if err := enc.Encode(record); err != nil {
				return fmt.Errorf("encode %s row: %w", table.Name, err)
			}
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush ndjson: %w", err)
	}
	return nil
}

// FileName turns a table name into a file stem ("All Articles" -> "all_articles").
func FileName(table string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(table)), " ", "_")
}

func runName(results domain.Results) string {
	site := FileName(results.Site)
	if site == "" {
		site = "run"
	}
	if results.RunID == "" {
		return site
	}
	return site + "_" + results.RunID
}
