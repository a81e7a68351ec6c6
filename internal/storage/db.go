package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"hiredesk/internal/config"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet. Candidate rows cascade
// from their search and call rows cascade from their candidate, matching the
// delete semantics of the candidate actions.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			job_role TEXT NOT NULL,
			skills TEXT[] NOT NULL DEFAULT '{}',
			candidate_corpus TEXT NOT NULL DEFAULT '',
			jd_text TEXT NOT NULL DEFAULT '',
			candidate_count INT NOT NULL,
			company TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			hr_contact TEXT NOT NULL DEFAULT '',
			notice_period TEXT NOT NULL DEFAULT '',
			remote TEXT NOT NULL DEFAULT '',
			contract TEXT NOT NULL DEFAULT '',
			processed BOOLEAN NOT NULL DEFAULT FALSE,
			shortlisted_indices JSONB NOT NULL DEFAULT '[]',
			submitted INT NOT NULL DEFAULT 0,
			custom_question TEXT NOT NULL DEFAULT '',
			archived BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			id UUID PRIMARY KEY,
			search_id UUID NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			total_exp DOUBLE PRECISION NOT NULL DEFAULT 0,
			relevant_exp DOUBLE PRECISION NOT NULL DEFAULT 0,
			summary TEXT NOT NULL DEFAULT '',
			match_score INT NOT NULL DEFAULT 0,
			call_status TEXT NOT NULL DEFAULT 'not_called',
			liked BOOLEAN NOT NULL DEFAULT FALSE,
			final_select BOOLEAN NOT NULL DEFAULT FALSE,
			joined BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_search ON candidates(search_id)`,
		`CREATE TABLE IF NOT EXISTS calls (
			id UUID PRIMARY KEY,
			candidate_id UUID NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
			duration INT NOT NULL DEFAULT 0,
			transcript JSONB NOT NULL DEFAULT '[]',
			extracted JSONB NOT NULL DEFAULT '{}',
			summary TEXT NOT NULL DEFAULT '',
			evaluation TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			job_role TEXT NOT NULL,
			skills TEXT[] NOT NULL DEFAULT '{}',
			description TEXT NOT NULL DEFAULT '',
			assigned_by TEXT NOT NULL DEFAULT '',
			assigned_to TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'Pending',
			deadline TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
