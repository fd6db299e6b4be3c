// Package importer runs the bulk import pipeline: workbook rows through
// row parsing into per-record upsert reconciliation against the store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/clientdesk/clientdesk/internal/client"
	"github.com/clientdesk/clientdesk/internal/store"
	"github.com/clientdesk/clientdesk/internal/workbook"
)

// Result is the report for one import run.
type Result struct {
	RunID     string        `json:"runId"`
	FileName  string        `json:"fileName"`
	TotalRows int           `json:"totalRows"`
	Inserted  int           `json:"inserted"`
	Updated   int           `json:"updated"`
	Renamed   int           `json:"renamed"`
	Skipped   []SkippedRow  `json:"skipped,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Run imports the workbook at path into st: reads data rows, parses and
// validates each one (invalid rows become recorded skips), reconciles the
// surviving records, and commits the batch once.
//
// A file-level failure (unopenable workbook, read error mid-sheet) aborts
// the run with zero records applied.
func Run(ctx context.Context, path string, st store.Store) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:    uuid.New().String(),
		FileName: filepath.Base(path),
	}
	logger := slog.Default().With("run_id", result.RunID, "file", result.FileName)

	reader, err := workbook.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", result.FileName, err)
	}
	defer reader.Close()

	var records []Record
	line := 1 // the header row
	for reader.Next() {
		line++
		c, err := client.ParseRow(reader.Row())
		if err != nil {
			var skip *client.SkipError
			if errors.As(err, &skip) {
				result.Skipped = append(result.Skipped, SkippedRow{
					Line:    line,
					Subject: skip.Subject,
					Field:   skip.Field,
					Reason:  skip.Reason,
				})
				logger.Warn("row skipped", "line", line, "field", skip.Field, "reason", skip.Reason)
				continue
			}
			return nil, fmt.Errorf("import %s row %d: %w", result.FileName, line, err)
		}
		records = append(records, Record{Line: line, Client: c})
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("import %s: %w", result.FileName, err)
	}
	result.TotalRows = line - 1

	stats, err := Reconcile(ctx, records, st)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", result.FileName, err)
	}

	result.Inserted = stats.Inserted
	result.Updated = stats.Updated
	result.Renamed = stats.Renamed
	result.Skipped = append(result.Skipped, stats.Skipped...)
	result.Duration = time.Since(start)

	logger.Info("import complete",
		"rows", result.TotalRows,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", len(result.Skipped),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}
