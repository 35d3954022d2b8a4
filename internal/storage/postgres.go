package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const postgresColumns = `id, title, amount, category, description, tx_date, created_at, updated_at`

// PostgresStore keeps records in PostgreSQL.
type PostgresStore struct {
	db   *sql.DB
	opts options
}

func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunPostgresMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db, opts: buildOptions(opts)}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// now truncates to the column precision so returned records match stored ones.
func (s *PostgresStore) now() time.Time {
	return s.opts.now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStore) Create(ctx context.Context, kind core.Kind, p core.Payload) (core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	var in core.Transaction
	p.Apply(&in)
	now := s.now()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING %s`, table, postgresColumns, postgresColumns)
	tx, err := scanPostgres(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), in.Title, in.Amount.String(), in.Category, in.Description,
		in.Date.String(), now,
	), kind)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	return tx, nil
}

func (s *PostgresStore) List(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, seq DESC`, postgresColumns, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanPostgres(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", kind, err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return core.Transaction{}, notFound(kind, id)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, postgresColumns, table)
	tx, err := scanPostgres(s.db.QueryRowContext(ctx, query, id), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, notFound(kind, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("failed to get %s %s: %w", kind, id, err)
	}
	return tx, nil
}

func (s *PostgresStore) Update(ctx context.Context, kind core.Kind, id string, p core.Payload) (core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return core.Transaction{}, notFound(kind, id)
	}
	var in core.Transaction
	p.Apply(&in)

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, amount = $2, category = $3, description = $4, tx_date = $5,
			updated_at = GREATEST($6, updated_at)
		WHERE id = $7
		RETURNING %s`, table, postgresColumns)
	tx, err := scanPostgres(s.db.QueryRowContext(ctx, query,
		in.Title, in.Amount.String(), in.Category, in.Description, in.Date.String(),
		s.now(), id,
	), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, notFound(kind, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}
	return tx, nil
}

func (s *PostgresStore) Delete(ctx context.Context, kind core.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return notFound(kind, id)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

func scanPostgres(row rowScanner, kind core.Kind) (core.Transaction, error) {
	var (
		tx     core.Transaction
		amount string
		date   time.Time
	)
	if err := row.Scan(&tx.ID, &tx.Title, &amount, &tx.Category, &tx.Description, &date, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Amount = core.NewMoney(d)
	tx.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
	tx.Kind = kind
	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.UpdatedAt = tx.UpdatedAt.UTC()
	return tx, nil
}
