package importer

// reconcile.go merges parsed import records into existing store state.
//
// For each record the decision is: insert when the card code is unknown,
// rename-then-update when the stored record answers to a different key,
// plain field update otherwise. A record whose target vanishes mid-update
// is a recorded skip, not a failure, matching the policy for row-level
// validation. The whole batch is committed exactly once at the end.

import (
	"context"
	"errors"
	"fmt"

	"github.com/clientdesk/clientdesk/internal/client"
	"github.com/clientdesk/clientdesk/internal/store"
)

// Record is one parsed import row. Line is the 1-based workbook row number,
// zero when the record did not come from a file.
type Record struct {
	Line   int
	Client *client.Client
}

// SkippedRow describes one excluded input row and why.
type SkippedRow struct {
	Line    int    `json:"line,omitempty"`
	Subject string `json:"subject,omitempty"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason"`
}

// ReconcileStats reports what the reconciler did with a batch.
type ReconcileStats struct {
	Inserted int
	Updated  int
	Renamed  int
	Skipped  []SkippedRow
}

// Reconcile upserts records into st in input order and commits once.
// Store-level failures other than a missing update target abort the batch;
// the session's rollback discards any partial work.
func Reconcile(ctx context.Context, records []Record, st store.Store) (*ReconcileStats, error) {
	stats := &ReconcileStats{}

	for _, rec := range records {
		c := rec.Client

		existing, err := st.FindByCode(ctx, c.CardCode)
		if err != nil {
			return nil, fmt.Errorf("reconcile row %d: %w", rec.Line, err)
		}

		if existing == nil {
			if err := st.Insert(ctx, c); err != nil {
				return nil, fmt.Errorf("reconcile row %d: %w", rec.Line, err)
			}
			stats.Inserted++
			continue
		}

		// The stored key can disagree with the incoming one when the
		// database collation matched loosely (case, trailing blanks).
		// Reassign the key first so the update lands on the right row.
		if existing.CardCode != c.CardCode {
			if err := st.RenameKey(ctx, existing.CardCode, c.CardCode); err != nil {
				if skipped := skipIfMissing(rec, err, stats); skipped {
					continue
				}
				return nil, fmt.Errorf("reconcile row %d: %w", rec.Line, err)
			}
			stats.Renamed++
		}

		if err := st.UpdateFields(ctx, c.CardCode, c); err != nil {
			if skipped := skipIfMissing(rec, err, stats); skipped {
				continue
			}
			return nil, fmt.Errorf("reconcile row %d: %w", rec.Line, err)
		}
		stats.Updated++
	}

	if err := st.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import batch: %w", err)
	}
	return stats, nil
}

// skipIfMissing records a skip for ErrNotFound and reports whether the
// error was handled.
func skipIfMissing(rec Record, err error, stats *ReconcileStats) bool {
	if !errors.Is(err, store.ErrNotFound) {
		return false
	}
	stats.Skipped = append(stats.Skipped, SkippedRow{
		Line:    rec.Line,
		Subject: rec.Client.LastName,
		Field:   "card code",
		Reason:  "record disappeared before update",
	})
	return true
}
