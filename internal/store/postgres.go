package store

// postgres.go implements Store as a transaction-scoped PostgreSQL session.
//
// Every session runs inside a single transaction begun at open time, so
// Commit makes the whole batch of mutations visible at once and Close
// without Commit rolls everything back. This is the transaction boundary
// for bulk imports: one commit per import, not one per record.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clientdesk/clientdesk/internal/client"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations (duplicate primary key).
const pgUniqueViolation = "23505"

const clientColumns = `card_code, last_name, first_name, patronymic, phone_mobile,
	email, gender_id, birthday, city, postal_code, bonus, turnover`

// PgSession is a Store backed by a single PostgreSQL transaction.
type PgSession struct {
	tx   pgx.Tx
	done bool
}

var _ Store = (*PgSession)(nil)

// NewSession begins a transaction on pool and returns a session bound to it.
// The caller must end the session with Commit or Close.
func NewSession(ctx context.Context, pool *pgxpool.Pool) (*PgSession, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return &PgSession{tx: tx}, nil
}

func (s *PgSession) FindByCode(ctx context.Context, code string) (*client.Client, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE card_code = $1`, code)

	c, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find client %s: %w", code, err)
	}
	return c, nil
}

func (s *PgSession) Insert(ctx context.Context, c *client.Client) error {
	_, err := s.tx.Exec(ctx,
		`INSERT INTO clients (`+clientColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		insertArgs(c)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("insert client %s: %w", c.CardCode, ErrDuplicate)
		}
		return fmt.Errorf("insert client %s: %w", c.CardCode, err)
	}
	return nil
}

func (s *PgSession) UpdateFields(ctx context.Context, code string, c *client.Client) error {
	tag, err := s.tx.Exec(ctx,
		`UPDATE clients SET
			last_name = $2, first_name = $3, patronymic = $4, phone_mobile = $5,
			email = $6, gender_id = $7, birthday = $8, city = $9,
			postal_code = $10, bonus = $11, turnover = $12
		 WHERE card_code = $1`,
		code, toText(c.LastName), toText(c.FirstName), toText(c.Patronymic),
		c.PhoneMobile, toText(c.Email), c.GenderID, pgDate(c.Birthday),
		toText(c.City), toInt8(c.PostalCode), toInt8(c.Bonus), toInt8(c.Turnover))
	if err != nil {
		return fmt.Errorf("update client %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update client %s: %w", code, ErrNotFound)
	}
	return nil
}

func (s *PgSession) RenameKey(ctx context.Context, oldCode, newCode string) error {
	tag, err := s.tx.Exec(ctx,
		`UPDATE clients SET card_code = $2 WHERE card_code = $1`, oldCode, newCode)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("rename %s to %s: %w", oldCode, newCode, ErrDuplicate)
		}
		return fmt.Errorf("rename %s to %s: %w", oldCode, newCode, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rename %s to %s: %w", oldCode, newCode, ErrNotFound)
	}
	return nil
}

func (s *PgSession) Delete(ctx context.Context, code string) error {
	tag, err := s.tx.Exec(ctx, `DELETE FROM clients WHERE card_code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete client %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete client %s: %w", code, ErrNotFound)
	}
	return nil
}

func (s *PgSession) ListAllOrderedByLastName(ctx context.Context) ([]client.Client, error) {
	rows, err := s.tx.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY last_name ASC, card_code ASC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]client.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("list clients: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *PgSession) Commit(ctx context.Context) error {
	if s.done {
		return errors.New("session already ended")
	}
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	s.done = true
	return nil
}

// Close rolls back the session unless it was committed. Safe to defer
// alongside Commit.
func (s *PgSession) Close(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

func insertArgs(c *client.Client) []any {
	return []any{
		c.CardCode, toText(c.LastName), toText(c.FirstName), toText(c.Patronymic),
		c.PhoneMobile, toText(c.Email), c.GenderID, pgDate(c.Birthday),
		toText(c.City), toInt8(c.PostalCode), toInt8(c.Bonus), toInt8(c.Turnover),
	}
}

func scanClient(row pgx.Row) (*client.Client, error) {
	var c client.Client
	var lastName, firstName, patronymic, email, city pgtype.Text
	var birthday pgtype.Date
	var postalCode, bonus, turnover pgtype.Int8

	err := row.Scan(&c.CardCode, &lastName, &firstName, &patronymic,
		&c.PhoneMobile, &email, &c.GenderID, &birthday, &city,
		&postalCode, &bonus, &turnover)
	if err != nil {
		return nil, err
	}

	c.LastName = lastName.String
	c.FirstName = firstName.String
	c.Patronymic = patronymic.String
	c.Email = email.String
	c.City = city.String
	c.Birthday = birthday.Time
	c.PostalCode = fromInt8(postalCode)
	c.Bonus = fromInt8(bonus)
	c.Turnover = fromInt8(turnover)
	return &c, nil
}

// toText maps empty strings to SQL NULL; optional text columns never store
// the empty string.
func toText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toInt8(p *int) pgtype.Int8 {
	if p == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: int64(*p), Valid: true}
}

func fromInt8(v pgtype.Int8) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}
