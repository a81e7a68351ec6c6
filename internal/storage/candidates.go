package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hiredesk/pkg/models"
)

// CandidateStore is the persistence surface for candidate rows.
type CandidateStore interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	GetByID(ctx context.Context, id string) (*models.Candidate, error)
	ListBySearch(ctx context.Context, searchID string) ([]models.Candidate, error)
	ListFinalSelects(ctx context.Context, searchID string) ([]models.Candidate, error)
	SetLiked(ctx context.Context, id string, liked bool) error
	SetCallStatus(ctx context.Context, id string, status models.CallStatus) error
	SetFinalSelect(ctx context.Context, ids []string, final bool) error
	SetJoined(ctx context.Context, updates []models.JoinedUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteBySearch(ctx context.Context, searchID string) error
	CountByCallStatus(ctx context.Context, searchID string, status models.CallStatus) (int, error)
}

// CandidateRepository implements CandidateStore on Postgres.
type CandidateRepository struct {
	db *sql.DB
}

func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

const candidateColumns = `id, search_id, name, email, phone, skills,
	total_exp, relevant_exp, summary, match_score, call_status,
	liked, final_select, joined, created_at, updated_at`

func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	candidate.ID = uuid.New().String()
	candidate.CreatedAt = time.Now()
	candidate.UpdatedAt = candidate.CreatedAt
	if candidate.CallStatus == "" {
		candidate.CallStatus = models.CallStatusNotCalled
	}

	query := `
		INSERT INTO candidates (
			id, search_id, name, email, phone, skills, total_exp, relevant_exp,
			summary, match_score, call_status, liked, final_select, joined,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		candidate.ID,
		candidate.SearchID,
		candidate.Name,
		candidate.Email,
		candidate.Phone,
		pq.Array(candidate.Skills),
		candidate.TotalExp,
		candidate.RelevantExp,
		candidate.Summary,
		candidate.MatchScore,
		string(candidate.CallStatus),
		candidate.Liked,
		candidate.FinalSelect,
		candidate.Joined,
		candidate.CreatedAt,
		candidate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}

	return nil
}

func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now()

	query := `
		UPDATE candidates SET
			name = $2, email = $3, phone = $4, skills = $5, total_exp = $6,
			relevant_exp = $7, summary = $8, match_score = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		candidate.ID,
		candidate.Name,
		candidate.Email,
		candidate.Phone,
		pq.Array(candidate.Skills),
		candidate.TotalExp,
		candidate.RelevantExp,
		candidate.Summary,
		candidate.MatchScore,
		candidate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}

	return requireRow(result)
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`

	candidate, err := scanCandidate(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query candidate: %w", err)
	}

	return candidate, nil
}

func (r *CandidateRepository) ListBySearch(ctx context.Context, searchID string) ([]models.Candidate, error) {
	query := `SELECT ` + candidateColumns + `
		FROM candidates WHERE search_id = $1 ORDER BY match_score DESC, created_at ASC`

	return r.list(ctx, query, searchID)
}

func (r *CandidateRepository) ListFinalSelects(ctx context.Context, searchID string) ([]models.Candidate, error) {
	query := `SELECT ` + candidateColumns + `
		FROM candidates WHERE search_id = $1 AND final_select = TRUE
		ORDER BY match_score DESC, created_at ASC`

	return r.list(ctx, query, searchID)
}

func (r *CandidateRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]models.Candidate, 0)
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, *candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return candidates, nil
}

func (r *CandidateRepository) SetLiked(ctx context.Context, id string, liked bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE candidates SET liked = $2, updated_at = $3 WHERE id = $1`,
		id, liked, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set liked: %w", err)
	}

	return requireRow(result)
}

func (r *CandidateRepository) SetCallStatus(ctx context.Context, id string, status models.CallStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE candidates SET call_status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set call status: %w", err)
	}

	return requireRow(result)
}

// SetFinalSelect escalates or removes a batch of candidates in one statement.
func (r *CandidateRepository) SetFinalSelect(ctx context.Context, ids []string, final bool) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE candidates SET final_select = $2, updated_at = $3 WHERE id = ANY($1)`
	if !final {
		// Leaving the final list also clears the joined flag
		query = `UPDATE candidates SET final_select = $2, joined = FALSE, updated_at = $3 WHERE id = ANY($1)`
	}

	_, err := r.db.ExecContext(ctx, query, pq.Array(ids), final, time.Now())
	if err != nil {
		return fmt.Errorf("set final select: %w", err)
	}

	return nil
}

func (r *CandidateRepository) SetJoined(ctx context.Context, updates []models.JoinedUpdate) error {
	for _, update := range updates {
		_, err := r.db.ExecContext(ctx,
			`UPDATE candidates SET joined = $2, updated_at = $3 WHERE id = $1 AND final_select = TRUE`,
			update.CandidateID, update.Joined, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("set joined for %s: %w", update.CandidateID, err)
		}
	}

	return nil
}

// Delete removes the candidate row; associated calls go with it via the
// foreign-key cascade.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}

	return requireRow(result)
}

// DeleteBySearch removes every candidate row a search accumulated, together
// with their calls via the cascade. Zero rows is not an error: a search that
// never reached intake has nothing to clear.
func (r *CandidateRepository) DeleteBySearch(ctx context.Context, searchID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE search_id = $1`, searchID)
	if err != nil {
		return fmt.Errorf("delete candidates for search: %w", err)
	}

	return nil
}

func (r *CandidateRepository) CountByCallStatus(ctx context.Context, searchID string, status models.CallStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candidates WHERE search_id = $1 AND call_status = $2`,
		searchID, string(status),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var candidate models.Candidate
	var status string

	err := row.Scan(
		&candidate.ID,
		&candidate.SearchID,
		&candidate.Name,
		&candidate.Email,
		&candidate.Phone,
		pq.Array(&candidate.Skills),
		&candidate.TotalExp,
		&candidate.RelevantExp,
		&candidate.Summary,
		&candidate.MatchScore,
		&status,
		&candidate.Liked,
		&candidate.FinalSelect,
		&candidate.Joined,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	candidate.CallStatus = models.CallStatus(status)
	return &candidate, nil
}
