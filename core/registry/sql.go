package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"maintenance-scheduler/core/model"
)

// SQLStore keeps crews in a relational database. The embedded sqlite driver
// covers single-node deployments; pgx covers a shared postgres.
type SQLStore struct {
	db       *sql.DB
	numbered bool
}

const schema = `CREATE TABLE IF NOT EXISTS crews (
    trade TEXT PRIMARY KEY,
    shift_hours INTEGER NOT NULL,
    technicians INTEGER NOT NULL,
    monday BOOLEAN NOT NULL,
    tuesday BOOLEAN NOT NULL,
    wednesday BOOLEAN NOT NULL,
    thursday BOOLEAN NOT NULL,
    friday BOOLEAN NOT NULL,
    saturday BOOLEAN NOT NULL,
    sunday BOOLEAN NOT NULL
);`

const (
	insertCrew = `INSERT INTO crews (trade, shift_hours, technicians, monday, tuesday, wednesday, thursday, friday, saturday, sunday)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	updateCrew = `UPDATE crews SET shift_hours = ?, technicians = ?, monday = ?, tuesday = ?, wednesday = ?,
thursday = ?, friday = ?, saturday = ?, sunday = ? WHERE trade = ?`
	selectCrew = `SELECT trade, shift_hours, technicians, monday, tuesday, wednesday, thursday, friday, saturday, sunday FROM crews`
)

// NewSQLStore opens the database for cfg and ensures the schema exists.
func NewSQLStore(cfg Config) (*SQLStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" && !strings.Contains(cfg.DSN, ":memory:") {
		if dir := filepath.Dir(cfg.DSN); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create registry dir: %w", err)
			}
		}
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLStore{db: db, numbered: cfg.Driver == "pgx"}, nil
}

// List returns all crews sorted by trade.
func (s *SQLStore) List(ctx context.Context) ([]model.Crew, error) {
	rows, err := s.db.QueryContext(ctx, s.q(selectCrew+` ORDER BY trade`))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var crews []model.Crew
	for rows.Next() {
		c, err := scanCrew(rows)
		if err != nil {
			return nil, err
		}
		crews = append(crews, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return crews, nil
}

// Get returns the crew for trade.
func (s *SQLStore) Get(ctx context.Context, trade string) (model.Crew, error) {
	row := s.db.QueryRowContext(ctx, s.q(selectCrew+` WHERE trade = ?`), trade)
	c, err := scanCrew(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Crew{}, ErrNotFound
	}
	return c, err
}

// Add inserts a new crew.
func (s *SQLStore) Add(ctx context.Context, c model.Crew) error {
	if err := c.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	var one int
	err = tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM crews WHERE trade = ?`), c.Trade).Scan(&one)
	switch {
	case err == nil:
		return ErrDuplicateTrade
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}
	args := []any{c.Trade, c.ShiftDurationHours, c.TechniciansPerCrew,
		c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday}
	if _, err := tx.ExecContext(ctx, s.q(insertCrew), args...); err != nil {
		return err
	}
	return tx.Commit()
}

// Put replaces the crew for c.Trade.
func (s *SQLStore) Put(ctx context.Context, c model.Crew) error {
	if err := c.Validate(); err != nil {
		return err
	}
	args := []any{c.ShiftDurationHours, c.TechniciansPerCrew,
		c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday, c.Trade}
	res, err := s.db.ExecContext(ctx, s.q(updateCrew), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the crew for trade.
func (s *SQLStore) Delete(ctx context.Context, trade string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM crews WHERE trade = ?`), trade)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanCrew(row scanner) (model.Crew, error) {
	var c model.Crew
	err := row.Scan(&c.Trade, &c.ShiftDurationHours, &c.TechniciansPerCrew,
		&c.Monday, &c.Tuesday, &c.Wednesday, &c.Thursday, &c.Friday, &c.Saturday, &c.Sunday)
	return c, err
}

// q rewrites ? placeholders to $1..$N for drivers that require numbering.
func (s *SQLStore) q(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
