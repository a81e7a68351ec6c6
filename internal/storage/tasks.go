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

// TaskStore is the persistence surface for assignment records.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByAssignee(ctx context.Context, assignee string) ([]models.Task, error)
	SetStatus(ctx context.Context, id string, status models.TaskStatus) error
}

// TaskRepository implements TaskStore on Postgres.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	task.ID = uuid.New().String()
	task.CreatedAt = time.Now()
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}

	query := `
		INSERT INTO tasks (
			id, title, job_role, skills, description, assigned_by,
			assigned_to, status, deadline, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.JobRole,
		pq.Array(task.Skills),
		task.Description,
		task.AssignedBy,
		task.AssignedTo,
		string(task.Status),
		task.Deadline,
		task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `
		SELECT id, title, job_role, skills, description, assigned_by,
		       assigned_to, status, deadline, created_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, assignee string) ([]models.Task, error) {
	query := `
		SELECT id, title, job_role, skills, description, assigned_by,
		       assigned_to, status, deadline, created_at
		FROM tasks
		WHERE assigned_to = $1
		ORDER BY deadline ASC
	`

	rows, err := r.db.QueryContext(ctx, query, assignee)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) SetStatus(ctx context.Context, id string, status models.TaskStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}

	return requireRow(result)
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var status string

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.JobRole,
		pq.Array(&task.Skills),
		&task.Description,
		&task.AssignedBy,
		&task.AssignedTo,
		&status,
		&task.Deadline,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = models.TaskStatus(status)
	return &task, nil
}
