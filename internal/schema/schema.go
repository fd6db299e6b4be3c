// Package schema owns the database layout for client records and brings a
// fresh database up to it on startup.
package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// clientsDDL matches the column layout the store reads and writes.
// Optional text columns store NULL rather than empty strings.
const clientsDDL = `
CREATE TABLE IF NOT EXISTS clients (
	card_code    text PRIMARY KEY,
	last_name    text NOT NULL,
	first_name   text,
	patronymic   text,
	phone_mobile text NOT NULL,
	email        text,
	gender_id    text,
	birthday     date,
	city         text,
	postal_code  bigint,
	bonus        bigint,
	turnover     bigint
);

CREATE INDEX IF NOT EXISTS clients_last_name_idx ON clients (last_name, card_code);
`

// Ensure creates the clients table and its index if they do not exist.
// It is safe to call on every startup.
func Ensure(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, clientsDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
