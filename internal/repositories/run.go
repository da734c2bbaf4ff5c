package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/shared"
)

// ErrRunNotFound is returned when no live run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, sequence, command, status, error, log, started_at, finished_at, created_at, updated_at, deleted_at`

// RunRepository implements [models.Repository] for [models.Run] history.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// Create inserts a run with a generated ID and the next sequence number
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO runs (id, sequence, command, status, error, log, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var sequence int
	err := withTx(r.db, func(tx *sql.Tx) error {
		var err error
		if sequence, err = nextSequence(tx, "runs"); err != nil {
			return err
		}

		_, err = tx.Exec(query,
			id,
			sequence,
			run.Command(),
			string(run.Status()),
			run.ErrorMessage(),
			run.Text(),
			run.StartedAt(),
			nullTime(run.FinishedAt()),
			run.CreatedAt(),
			run.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return run, nil
}

// Update stores the terminal state and log of an existing run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	query := `
		UPDATE runs
		SET status = ?, error = ?, log = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, string(run.Status()), run.ErrorMessage(), run.Text(), nullTime(run.FinishedAt()), now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	if err := expectRow(result, run.ID()); err != nil {
		return err
	}

	run.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return expectRow(result, id)
}

// List retrieves runs in sequence order, excluding soft-deleted runs.
//
// Supported criteria: "command" (string) and "status" ([models.RunStatus] or string).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	if command, ok := criteria["command"].(string); ok && command != "" {
		query += " AND command = ?"
		args = append(args, command)
	}

	switch status := criteria["status"].(type) {
	case models.RunStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	query += " ORDER BY sequence ASC"
	return r.query(query, args...)
}

// Recent returns up to limit runs, newest first
func (r *RunRepository) Recent(limit int) ([]*models.Run, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", shared.ErrInvalidArgument, limit)
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL ORDER BY sequence DESC LIMIT ?`
	return r.query(query, limit)
}

func (r *RunRepository) query(query string, args ...any) ([]*models.Run, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var (
		id         string
		sequence   int
		command    string
		status     string
		errMessage string
		text       string
		startedAt  time.Time
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &command, &status, &errMessage, &text, &startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewRun(sequence, command, startedAt)
	run.SetID(id)
	run.SetText(text)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	run.Restore(models.RunStatus(status), errMessage, finishedAt.Time)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}
	return run, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", ErrRunNotFound, id)
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
