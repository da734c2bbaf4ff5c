package models

import (
	"fmt"
	"strings"
	"time"
)

// RunStatus is the terminal state of a recorded run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run records one organize or dedupe invocation together with its run log.
//
// Only the narrative is persisted; library entities are always fetched fresh.
type Run struct {
	id         string
	sequence   int
	command    string
	status     RunStatus
	errMessage string
	lines      []string
	startedAt  time.Time
	finishedAt time.Time
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewRun creates a run for the named command that started at startedAt.
func NewRun(sequence int, command string, startedAt time.Time) *Run {
	now := time.Now()
	return &Run{
		sequence:  sequence,
		command:   command,
		status:    RunSucceeded,
		startedAt: startedAt,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string { return r.id }
func (r *Run) Sequence() int { return r.sequence }
func (r *Run) Command() string { return r.command }
func (r *Run) Status() RunStatus { return r.status }
func (r *Run) ErrorMessage() string { return r.errMessage }
func (r *Run) StartedAt() time.Time { return r.startedAt }
func (r *Run) FinishedAt() time.Time { return r.finishedAt }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time { return r.deletedAt }
func (r *Run) Lines() []string { return append([]string(nil), r.lines...) }
func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetSequence(seq int) { r.sequence = seq }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// SetLines replaces the stored run log lines.
func (r *Run) SetLines(lines []string) {
	r.lines = append([]string(nil), lines...)
}

// Text returns the run log joined with newlines, the form stored in the database.
func (r *Run) Text() string {
	return strings.Join(r.lines, "\n")
}

// SetText splits a stored run log back into lines.
func (r *Run) SetText(text string) {
	if text == "" {
		r.lines = nil
		return
	}
	r.lines = strings.Split(text, "\n")
}

// Finish marks the run complete. A non-nil err marks it failed.
func (r *Run) Finish(finishedAt time.Time, err error) {
	r.finishedAt = finishedAt
	if err != nil {
		r.status = RunFailed
		r.errMessage = err.Error()
	} else {
		r.status = RunSucceeded
		r.errMessage = ""
	}
}

// Restore sets the terminal fields loaded from storage.
func (r *Run) Restore(status RunStatus, errMessage string, finishedAt time.Time) {
	r.status = status
	r.errMessage = errMessage
	r.finishedAt = finishedAt
}

// Duration is the wall time between start and finish.
func (r *Run) Duration() time.Duration {
	if r.finishedAt.IsZero() {
		return 0
	}
	return r.finishedAt.Sub(r.startedAt)
}

func (r *Run) Validate() error {
	if r.command == "" {
		return fmt.Errorf("command is required")
	}
	if r.status != RunSucceeded && r.status != RunFailed {
		return fmt.Errorf("invalid status %q", r.status)
	}
	if r.startedAt.IsZero() {
		return fmt.Errorf("started_at is required")
	}
	if !r.finishedAt.IsZero() && r.finishedAt.Before(r.startedAt) {
		return fmt.Errorf("finished_at precedes started_at")
	}
	return nil
}
