// Package store handles SQLite persistence of the job history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/iccgen/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrJobNotFound is returned when no job matches a lookup.
var ErrJobNotFound = errors.New("job not found")

// Store wraps SQLite access for job data.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			profile_name TEXT NOT NULL,
			settings_path TEXT NOT NULL,
			created_at TEXT NOT NULL,
			number_of_pages INTEGER NOT NULL,
			high_density INTEGER NOT NULL,
			gray_patch_count INTEGER NOT NULL,
			copyright_info TEXT NOT NULL,
			precondition_profile_path TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS steps (
			id INTEGER PRIMARY KEY,
			job_id TEXT NOT NULL,
			step TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			error TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_settings_path ON jobs(settings_path);`,
		`CREATE INDEX IF NOT EXISTS idx_steps_job_id ON steps(job_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertJob registers a job. A missing ID or creation time is filled in and
// the stored record is returned.
func (s *Store) InsertJob(ctx context.Context, rec model.JobRecord) (model.JobRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, profile_name, settings_path, created_at, number_of_pages, high_density, gray_patch_count, copyright_info, precondition_profile_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.ProfileName,
		rec.SettingsPath,
		rec.CreatedAt.UTC().Format(timeLayout),
		rec.Params.NumberOfPages,
		rec.Params.HighDensity,
		rec.Params.GrayPatchCount,
		rec.Params.CopyrightInfo,
		rec.Params.PreconditionProfilePath,
	)
	if err != nil {
		return model.JobRecord{}, err
	}
	return rec, nil
}

const jobColumns = `id, profile_name, settings_path, created_at, number_of_pages, high_density, gray_patch_count, copyright_info, precondition_profile_path`

// LatestJob returns the most recently created job.
func (s *Store) LatestJob(ctx context.Context) (model.JobRecord, error) {
	return s.queryJob(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT 1`)
}

// JobByID returns the job with the given ID.
func (s *Store) JobByID(ctx context.Context, id string) (model.JobRecord, error) {
	return s.queryJob(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
}

// JobBySettingsPath returns the most recent job saved to path.
func (s *Store) JobBySettingsPath(ctx context.Context, path string) (model.JobRecord, error) {
	return s.queryJob(ctx, `SELECT `+jobColumns+` FROM jobs WHERE settings_path = ? ORDER BY created_at DESC LIMIT 1`, path)
}

func (s *Store) queryJob(ctx context.Context, query string, args ...any) (model.JobRecord, error) {
	rec, err := scanJob(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.JobRecord{}, ErrJobNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (model.JobRecord, error) {
	var rec model.JobRecord
	var createdAt string
	if err := row.Scan(
		&rec.ID,
		&rec.ProfileName,
		&rec.SettingsPath,
		&createdAt,
		&rec.Params.NumberOfPages,
		&rec.Params.HighDensity,
		&rec.Params.GrayPatchCount,
		&rec.Params.CopyrightInfo,
		&rec.Params.PreconditionProfilePath,
	); err != nil {
		return model.JobRecord{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.JobRecord{}, err
	}
	rec.CreatedAt = parsed
	return rec, nil
}

// RecordStep stores one executed workflow step.
func (s *Store) RecordStep(ctx context.Context, step model.StepRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO steps (job_id, step, started_at, ended_at, error) VALUES (?, ?, ?, ?, ?)`,
		step.JobID,
		step.Step,
		step.StartedAt.UTC().Format(timeLayout),
		step.EndedAt.UTC().Format(timeLayout),
		step.Err,
	)
	return err
}

// ListSteps returns the steps of a job in execution order.
func (s *Store) ListSteps(ctx context.Context, jobID string) ([]model.StepRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, step, started_at, ended_at, error FROM steps WHERE job_id = ? ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var steps []model.StepRecord
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func scanStep(row scanner) (model.StepRecord, error) {
	var step model.StepRecord
	var startedAt, endedAt string
	if err := row.Scan(&step.JobID, &step.Step, &startedAt, &endedAt, &step.Err); err != nil {
		return model.StepRecord{}, err
	}
	var err error
	if step.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return model.StepRecord{}, err
	}
	if step.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
		return model.StepRecord{}, err
	}
	return step, nil
}

// ListJobSummaries returns the newest jobs first, each with its step count
// and most recent step. A non-positive limit returns every job.
func (s *Store) ListJobSummaries(ctx context.Context, limit int) ([]model.JobSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+`, (SELECT COUNT(*) FROM steps WHERE steps.job_id = jobs.id)
		 FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var summaries []model.JobSummary
	for rows.Next() {
		var sum model.JobSummary
		var createdAt string
		if err := rows.Scan(
			&sum.Job.ID,
			&sum.Job.ProfileName,
			&sum.Job.SettingsPath,
			&createdAt,
			&sum.Job.Params.NumberOfPages,
			&sum.Job.Params.HighDensity,
			&sum.Job.Params.GrayPatchCount,
			&sum.Job.Params.CopyrightInfo,
			&sum.Job.Params.PreconditionProfilePath,
			&sum.StepCount,
		); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		sum.Job.CreatedAt = parsed
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Close before issuing follow-up queries on the same pool.
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for i := range summaries {
		if summaries[i].StepCount == 0 {
			continue
		}
		step, err := scanStep(s.db.QueryRowContext(ctx,
			`SELECT job_id, step, started_at, ended_at, error FROM steps WHERE job_id = ? ORDER BY id DESC LIMIT 1`,
			summaries[i].Job.ID))
		if err != nil {
			return nil, err
		}
		summaries[i].LastStep = &step
	}
	return summaries, nil
}
