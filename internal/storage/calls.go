package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiredesk/pkg/models"
)

// CallStore is the persistence surface for call records. Inserts happen only
// through ApplyUpdate: a call row never exists without its candidate status
// flip.
type CallStore interface {
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Call, error)
	ApplyUpdate(ctx context.Context, update *models.CallStatusUpdate) error
}

// CallRepository implements CallStore on Postgres.
type CallRepository struct {
	db *sql.DB
}

func NewCallRepository(db *sql.DB) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) ListByCandidate(ctx context.Context, candidateID string) ([]models.Call, error) {
	query := `
		SELECT id, candidate_id, duration, transcript, extracted, summary,
		       evaluation, created_at, updated_at
		FROM calls
		WHERE candidate_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := make([]models.Call, 0)
	for rows.Next() {
		var call models.Call
		var transcriptJSON, extractedJSON []byte

		err := rows.Scan(
			&call.ID,
			&call.CandidateID,
			&call.Duration,
			&transcriptJSON,
			&extractedJSON,
			&call.Summary,
			&call.Evaluation,
			&call.CreatedAt,
			&call.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}

		if err := json.Unmarshal(transcriptJSON, &call.Transcript); err != nil {
			return nil, fmt.Errorf("unmarshal transcript: %w", err)
		}
		if err := json.Unmarshal(extractedJSON, &call.Extracted); err != nil {
			return nil, fmt.Errorf("unmarshal extracted fields: %w", err)
		}

		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}

	return calls, nil
}

// ApplyUpdate records the payload the calling subsystem pushes back after a
// call attempt: a new call row plus the candidate's status flip, applied in
// one transaction.
func (r *CallRepository) ApplyUpdate(ctx context.Context, update *models.CallStatusUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin call update: %w", err)
	}
	defer tx.Rollback()

	transcriptJSON, err := json.Marshal(update.Transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if update.Transcript == nil {
		transcriptJSON = []byte("[]")
	}

	extractedJSON, err := json.Marshal(update.Extracted)
	if err != nil {
		return fmt.Errorf("marshal extracted fields: %w", err)
	}
	if update.Extracted == nil {
		extractedJSON = []byte("{}")
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO calls (
			id, candidate_id, duration, transcript, extracted, summary,
			evaluation, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(),
		update.CandidateID,
		update.Duration,
		transcriptJSON,
		extractedJSON,
		update.Summary,
		update.Evaluation,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert call record: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE candidates SET call_status = $2, updated_at = $3 WHERE id = $1`,
		update.CandidateID, string(update.Status), now,
	)
	if err != nil {
		return fmt.Errorf("update candidate call status: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	return tx.Commit()
}
