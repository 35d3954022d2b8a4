package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

const sqliteColumns = `id, title, amount, category, description, tx_date, created_at, updated_at`

// SQLiteStore keeps records in a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, opts: buildOptions(opts)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, kind core.Kind, p core.Payload) (core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	now := s.opts.now().UTC()
	tx := core.Transaction{ID: uuid.NewString(), Kind: kind, CreatedAt: now, UpdatedAt: now}
	p.Apply(&tx)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table, sqliteColumns)
	_, err = s.db.ExecContext(ctx, query,
		tx.ID, tx.Title, tx.Amount.String(), tx.Category, tx.Description,
		tx.Date.String(), now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	return tx, nil
}

func (s *SQLiteStore) List(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, seq DESC`, sqliteColumns, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanSQLite(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, sqliteColumns, table)
	tx, err := scanSQLite(s.db.QueryRowContext(ctx, query, id), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, notFound(kind, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return tx, nil
}

func (s *SQLiteStore) Update(ctx context.Context, kind core.Kind, id string, p core.Payload) (core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	var tx core.Transaction
	p.Apply(&tx)
	now := s.opts.now().UTC()

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = ?, amount = ?, category = ?, description = ?, tx_date = ?,
			updated_at = MAX(?, updated_at)
		WHERE id = ?
		RETURNING %s`, table, sqliteColumns)
	row := s.db.QueryRowContext(ctx, query,
		tx.Title, tx.Amount.String(), tx.Category, tx.Description, tx.Date.String(),
		now.UnixNano(), id,
	)
	tx, err = scanSQLite(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, notFound(kind, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	return tx, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, kind core.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner, kind core.Kind) (core.Transaction, error) {
	var (
		tx                   core.Transaction
		amount, date         string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&tx.ID, &tx.Title, &amount, &tx.Category, &tx.Description, &date, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}
	var err error
	if tx.Amount.Decimal, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, err
	}
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, err
	}
	tx.Kind = kind
	tx.CreatedAt = time.Unix(0, createdAt).UTC()
	tx.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return tx, nil
}
