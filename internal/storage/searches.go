package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hiredesk/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SearchStore is the persistence surface the handlers and the matching
// engine need for search rows.
type SearchStore interface {
	Create(ctx context.Context, search *models.Search) error
	Update(ctx context.Context, search *models.Search) error
	GetByID(ctx context.Context, id string) (*models.Search, error)
	SetShortlist(ctx context.Context, id string, indices models.IndexList) error
	SetSubmitted(ctx context.Context, id string, submitted int) error
	SetSharedFields(ctx context.Context, id string, fields models.SharedFields) error
	SetCustomQuestion(ctx context.Context, id, question string) error
	Archive(ctx context.Context, id string) error
}

// SearchRepository implements SearchStore on Postgres.
type SearchRepository struct {
	db *sql.DB
}

func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

func (r *SearchRepository) Create(ctx context.Context, search *models.Search) error {
	search.ID = uuid.New().String()
	search.CreatedAt = time.Now()
	search.UpdatedAt = search.CreatedAt

	indicesJSON, err := json.Marshal(search.ShortlistedIndices)
	if err != nil {
		return fmt.Errorf("marshal shortlisted indices: %w", err)
	}

	query := `
		INSERT INTO searches (
			id, name, job_role, skills, candidate_corpus, jd_text,
			candidate_count, company, location, hr_contact, notice_period,
			remote, contract, processed, shortlisted_indices, submitted,
			custom_question, archived, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = r.db.ExecContext(ctx, query,
		search.ID,
		search.Name,
		search.JobRole,
		pq.Array(search.Skills),
		search.CandidateCorpus,
		search.JDText,
		search.CandidateCount,
		search.Shared.Company,
		search.Shared.Location,
		search.Shared.HRContact,
		search.Shared.NoticePeriod,
		search.Shared.Remote,
		search.Shared.Contract,
		search.Processed,
		indicesJSON,
		search.Submitted,
		search.CustomQuestion,
		search.Archived,
		search.CreatedAt,
		search.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}

	return nil
}

// Update rewrites the criteria of an existing search in place. The processed
// flag and the intake cursor are reset because a criteria change invalidates
// the previous matching output.
func (r *SearchRepository) Update(ctx context.Context, search *models.Search) error {
	search.UpdatedAt = time.Now()

	query := `
		UPDATE searches SET
			name = $2, job_role = $3, skills = $4, candidate_corpus = $5,
			jd_text = $6, candidate_count = $7, company = $8, location = $9,
			hr_contact = $10, notice_period = $11, remote = $12, contract = $13,
			processed = FALSE, shortlisted_indices = '[]', submitted = 0,
			updated_at = $14
		WHERE id = $1 AND archived = FALSE
	`

	result, err := r.db.ExecContext(ctx, query,
		search.ID,
		search.Name,
		search.JobRole,
		pq.Array(search.Skills),
		search.CandidateCorpus,
		search.JDText,
		search.CandidateCount,
		search.Shared.Company,
		search.Shared.Location,
		search.Shared.HRContact,
		search.Shared.NoticePeriod,
		search.Shared.Remote,
		search.Shared.Contract,
		search.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update search: %w", err)
	}

	return requireRow(result)
}

func (r *SearchRepository) GetByID(ctx context.Context, id string) (*models.Search, error) {
	var search models.Search
	var indicesJSON []byte

	query := `
		SELECT id, name, job_role, skills, candidate_corpus, jd_text,
		       candidate_count, company, location, hr_contact, notice_period,
		       remote, contract, processed, shortlisted_indices, submitted,
		       custom_question, archived, created_at, updated_at
		FROM searches
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&search.ID,
		&search.Name,
		&search.JobRole,
		pq.Array(&search.Skills),
		&search.CandidateCorpus,
		&search.JDText,
		&search.CandidateCount,
		&search.Shared.Company,
		&search.Shared.Location,
		&search.Shared.HRContact,
		&search.Shared.NoticePeriod,
		&search.Shared.Remote,
		&search.Shared.Contract,
		&search.Processed,
		&indicesJSON,
		&search.Submitted,
		&search.CustomQuestion,
		&search.Archived,
		&search.CreatedAt,
		&search.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query search: %w", err)
	}

	if err := json.Unmarshal(indicesJSON, &search.ShortlistedIndices); err != nil {
		return nil, fmt.Errorf("unmarshal shortlisted indices: %w", err)
	}

	return &search, nil
}

// SetShortlist stores the matching output and flips the processed flag in one
// statement so pollers never observe one without the other.
func (r *SearchRepository) SetShortlist(ctx context.Context, id string, indices models.IndexList) error {
	indicesJSON, err := json.Marshal(indices)
	if err != nil {
		return fmt.Errorf("marshal shortlisted indices: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE searches SET shortlisted_indices = $2, processed = TRUE, updated_at = $3 WHERE id = $1`,
		id, indicesJSON, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set shortlist: %w", err)
	}

	return requireRow(result)
}

func (r *SearchRepository) SetSubmitted(ctx context.Context, id string, submitted int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE searches SET submitted = $2, updated_at = $3 WHERE id = $1`,
		id, submitted, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set submitted: %w", err)
	}

	return requireRow(result)
}

func (r *SearchRepository) SetSharedFields(ctx context.Context, id string, fields models.SharedFields) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE searches SET company = $2, location = $3, hr_contact = $4,
		 notice_period = $5, remote = $6, contract = $7, updated_at = $8
		 WHERE id = $1`,
		id, fields.Company, fields.Location, fields.HRContact,
		fields.NoticePeriod, fields.Remote, fields.Contract, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set shared fields: %w", err)
	}

	return requireRow(result)
}

func (r *SearchRepository) SetCustomQuestion(ctx context.Context, id, question string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE searches SET custom_question = $2, updated_at = $3 WHERE id = $1`,
		id, question, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set custom question: %w", err)
	}

	return requireRow(result)
}

// Archive freezes a finished search into history.
func (r *SearchRepository) Archive(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE searches SET archived = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("archive search: %w", err)
	}

	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
