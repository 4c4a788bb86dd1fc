package library

import (
	"database/sql"
	"fmt"
)

// querier abstracts *sql.DB and *sql.Tx for shared query logic.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// Store provides access to the records of one category.
type Store struct {
	db       *sql.DB
	category Category
}

// NewStore creates a store over the category's database.
// It panics on an unknown category, since the table name is derived from it.
func NewStore(db *sql.DB, category Category) *Store {
	if !category.Valid() {
		panic(fmt.Sprintf("library: unknown category %q", category))
	}
	return &Store{db: db, category: category}
}

// Category returns the category this store holds.
func (s *Store) Category() Category { return s.category }

// Begin starts a transaction.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx, category: s.category}, nil
}

// Tx wraps a database transaction with the same methods as Store.
type Tx struct {
	tx       *sql.Tx
	category Category
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
