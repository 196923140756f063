package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/halcyonforge/bookvault/internal/books"
)

// Compile-time interface guard.
var _ books.Store = (*SQLite)(nil)

// SQLite persists the collection in a single SQLite table while keeping the
// load/save contract of books.Store: Load reads the whole table in insertion
// order, Save replaces it in one transaction.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database at the given path and
// applies recommended pragmas for WAL mode and busy handling.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// modernc.org/sqlite requires SQL statements, not DSN params.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS books (
			pos    INTEGER PRIMARY KEY AUTOINCREMENT,
			id     INTEGER NOT NULL UNIQUE,
			title  TEXT    NOT NULL,
			author TEXT    NOT NULL,
			year   INTEGER,
			isbn   TEXT    NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

// Load reads the full collection in insertion order.
func (s *SQLite) Load(ctx context.Context) ([]books.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, year, isbn FROM books ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	records := []books.Book{}
	for rows.Next() {
		var b books.Book
		var year sql.NullInt64
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &year, &b.ISBN); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		if year.Valid {
			b.Year = books.NewYear(int(year.Int64))
		}
		records = append(records, b)
	}
	return records, rows.Err()
}

// Save replaces the stored collection in a single transaction.
func (s *SQLite) Save(ctx context.Context, records []books.Book) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM books`); err != nil {
			return fmt.Errorf("clear books: %w", err)
		}
		for _, b := range records {
			var year sql.NullInt64
			if b.Year.Valid {
				year = sql.NullInt64{Int64: int64(b.Year.Int), Valid: true}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO books (id, title, author, year, isbn) VALUES (?, ?, ?, ?, ?)`,
				b.ID, b.Title, b.Author, year, b.ISBN,
			)
			if err != nil {
				return fmt.Errorf("insert book %d: %w", b.ID, err)
			}
		}
		return nil
	})
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// tx executes fn within a transaction, committing on nil and rolling back
// otherwise.
func (s *SQLite) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
