package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence increments the counter in the table's companion {table}_sequence row and returns the new value.
func NextSequence(db *sql.DB, table string) (int, error) {
	var sequence int
	err := withTx(db, func(tx *sql.Tx) error {
		var err error
		sequence, err = nextSequence(tx, table)
		return err
	})
	return sequence, err
}

// nextSequence bumps the counter inside tx, so the caller's insert and the counter commit together.
func nextSequence(tx *sql.Tx, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := tx.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
