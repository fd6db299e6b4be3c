// Package workbook reads import rows out of xlsx files.
//
// Client lists arrive as workbooks that are frequently still open in Excel
// on someone's desktop, so opening the file may fail with a transient
// sharing/lock error. Open retries a bounded number of times with a fixed
// pause before giving up; a missing file is reported immediately.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/xuri/excelize/v2"
)

// OpenAttempts is how many times Open tries the file before giving up.
var OpenAttempts = 5

// RetryDelay is the pause between open attempts.
var RetryDelay = time.Second

// Reader iterates the data rows of the first sheet of a workbook: a lazy,
// forward-only, non-restartable sequence. The header row (row 1) is skipped.
type Reader struct {
	file    *excelize.File
	rows    *excelize.Rows
	current []string
	err     error
}

// Open opens the workbook at path, retrying transient failures.
// The caller must Close the returned Reader.
func Open(ctx context.Context, path string) (*Reader, error) {
	var lastErr error

	for attempt := 1; attempt <= OpenAttempts; attempt++ {
		file, err := excelize.OpenFile(path)
		if err == nil {
			return newReader(file, path)
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		lastErr = err

		if attempt < OpenAttempts {
			select {
			case <-time.After(RetryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("open workbook %s: %w", path, ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("open workbook %s after %d attempts: %w", path, OpenAttempts, lastErr)
}

func newReader(file *excelize.File, path string) (*Reader, error) {
	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		file.Close()
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	// Skip the header row.
	if rows.Next() {
		if _, err := rows.Columns(); err != nil {
			rows.Close()
			file.Close()
			return nil, fmt.Errorf("read header row: %w", err)
		}
	}

	return &Reader{file: file, rows: rows}, nil
}

// Next advances to the next data row. It returns false when the sheet is
// exhausted or a read error occurred; check Err after the loop.
func (r *Reader) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	cells, err := r.rows.Columns()
	if err != nil {
		r.err = fmt.Errorf("read row: %w", err)
		return false
	}
	r.current = cells
	return true
}

// Row returns the cells of the current row. Only valid after Next reported
// true. Trailing empty cells may be absent; consumers pad as needed.
func (r *Reader) Row() []string {
	return r.current
}

// Err returns the first error encountered while iterating, if any.
func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Error()
}

// Close releases the underlying workbook.
func (r *Reader) Close() error {
	rowsErr := r.rows.Close()
	fileErr := r.file.Close()
	if rowsErr != nil {
		return rowsErr
	}
	return fileErr
}
