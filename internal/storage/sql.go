package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/rxkeeper/internal/dbx"
)

// dialect holds the placeholder-specific statements of a SQL backend.
type dialect struct {
	selectCollection string
	deleteCollection string
	insertRecord     string
}

var sqliteDialect = dialect{
	selectCollection: `SELECT body FROM documents WHERE collection = ? ORDER BY position`,
	deleteCollection: `DELETE FROM documents WHERE collection = ?`,
	insertRecord:     `INSERT INTO documents (collection, position, body) VALUES (?, ?, ?)`,
}

var postgresDialect = dialect{
	selectCollection: `SELECT body FROM documents WHERE collection = $1 ORDER BY position`,
	deleteCollection: `DELETE FROM documents WHERE collection = $1`,
	insertRecord:     `INSERT INTO documents (collection, position, body) VALUES ($1, $2, $3)`,
}

// SQLStorage implements Storage on a documents table, one row per record.
type SQLStorage struct {
	db *sql.DB
	d  dialect
}

// NewSQLiteStorage binds a SQLStorage to an SQLite database whose schema is
// already migrated.
func NewSQLiteStorage(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db, d: sqliteDialect}
}

// NewPostgresStorage binds a SQLStorage to a PostgreSQL database whose
// schema is already migrated.
func NewPostgresStorage(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db, d: postgresDialect}
}

// ReadCollection returns the records of a collection ordered by position.
func (s *SQLStorage) ReadCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, s.d.selectCollection, name)
	if err != nil {
		return nil, fmt.Errorf("failed to select collection %s: %w", name, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", name, err)
		}
		records = append(records, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s records: %w", name, err)
	}
	return records, nil
}

// WriteCollection replaces a collection inside one transaction.
func (s *SQLStorage) WriteCollection(ctx context.Context, name string, records []json.RawMessage) error {
	return s.WriteBatch(ctx, Batch{name: records})
}

// WriteBatch replaces every collection of the batch inside one transaction.
func (s *SQLStorage) WriteBatch(ctx context.Context, batch Batch) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, name := range batch.Names() {
			if err := s.replace(ctx, tx, name, batch[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLStorage) replace(ctx context.Context, tx dbx.DBTX, name string, records []json.RawMessage) error {
	if _, err := tx.ExecContext(ctx, s.d.deleteCollection, name); err != nil {
		return fmt.Errorf("failed to clear collection %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, s.d.insertRecord)
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", name, err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, name, i, string(r)); err != nil {
			return fmt.Errorf("failed to insert %s record %d: %w", name, i, err)
		}
	}
	return nil
}

// Close closes the database handle.
func (s *SQLStorage) Close() error {
	return s.db.Close()
}
