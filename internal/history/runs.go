package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"movieconv/internal/batch"
	"movieconv/internal/services"
	"movieconv/internal/settings"
)

const runColumns = "id, started_at, finished_at, status, total, succeeded, failed, summary, encoder, settings_json, hardware"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 20

// RecordRun stores a finished batch and its per-file outcomes. Recording the
// same run ID twice replaces the earlier entry.
func (s *Store) RecordRun(ctx context.Context, result batch.Result) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(result.RunID) == "" {
		return services.Wrap(services.ErrValidation, "history", "record run", "run id is required", nil)
	}
	settingsJSON, err := json.Marshal(result.Settings)
	if err != nil {
		return fmt.Errorf("encode run settings: %w", err)
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", result.RunID); err != nil {
			return fmt.Errorf("replace run: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			result.RunID,
			formatTime(result.Started),
			formatTime(result.Finished),
			string(result.Status),
			result.Total,
			result.Succeeded,
			result.Failed(),
			result.Summary,
			result.Encoder,
			string(settingsJSON),
			boolToInt(result.Hardware),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO run_files (run_id, seq, input, output, outcome, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare run file insert: %w", err)
		}
		defer stmt.Close()
		for _, file := range result.Files {
			if _, err := stmt.ExecContext(ctx,
				result.RunID,
				file.Seq,
				file.Input,
				file.Output,
				string(file.Outcome),
				file.Error,
				file.Duration.Milliseconds(),
			); err != nil {
				return fmt.Errorf("insert run file %d: %w", file.Seq, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run by ID. An unambiguous ID prefix is also accepted, so the
// short IDs shown in logs can be used.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, services.Wrap(services.ErrValidation, "history", "get run", "run id is required", nil)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\\' ORDER BY id LIMIT 2",
		id, escapeLike(id)+"%")
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	switch len(matches) {
	case 0:
		return Run{}, services.Wrap(services.ErrNotFound, "history", "get run", id, nil)
	case 1:
		return matches[0], nil
	default:
		return Run{}, services.Wrap(services.ErrValidation, "history", "get run", fmt.Sprintf("run id %q is ambiguous", id), nil)
	}
}

// RunFiles returns the per-file outcomes of a run in batch order.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]File, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, seq, input, output, outcome, error, duration_ms FROM run_files WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var (
			file       File
			durationMS int64
		)
		if err := rows.Scan(&file.RunID, &file.Seq, &file.Input, &file.Output, &file.Outcome, &file.Error, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		file.Duration = time.Duration(durationMS) * time.Millisecond
		files = append(files, file)
	}
	return files, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run          Run
		started      string
		finished     string
		settingsJSON string
		hardware     int
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.Status, &run.Total, &run.Succeeded,
		&run.Failed, &run.Summary, &run.Encoder, &settingsJSON, &hardware); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, services.Wrap(services.ErrNotFound, "history", "scan run", "", err)
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.Hardware = hardware != 0
	run.Settings = settings.Default()
	if settingsJSON != "" {
		if err := json.Unmarshal([]byte(settingsJSON), &run.Settings); err != nil {
			return Run{}, fmt.Errorf("decode settings for run %s: %w", run.ID, err)
		}
	}
	return run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
