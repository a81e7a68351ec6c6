package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// ListTasksHandler returns the caller's assignment records with their
// derived urgency tiers.
func ListTasksHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		assignee := c.QueryParam("assignee")
		if assignee == "" {
			assignee = owner(c)
		}

		tasks, err := deps.Tasks.ListByAssignee(c.Request().Context(), assignee)
		if err != nil {
			return utils.NewInternalServerError("Failed to load tasks")
		}

		now := time.Now()
		views := make([]models.TaskView, 0, len(tasks))
		for _, task := range tasks {
			views = append(views, models.TaskView{Task: task, Urgency: task.UrgencyAt(now)})
		}

		return c.JSON(http.StatusOK, models.TaskListResponse{Success: true, Tasks: views})
	}
}

// GetTaskHandler fetches one task so the shortlist form can prefill from it.
func GetTaskHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := deps.Tasks.GetByID(c.Request().Context(), c.Param("id"))
		if err == storage.ErrNotFound {
			return notFound("task")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load task")
		}

		return c.JSON(http.StatusOK, models.TaskView{Task: *task, Urgency: task.UrgencyAt(time.Now())})
	}
}

// CreateTaskHandler records a job opening assigned to a recruiter.
func CreateTaskHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.TaskCreateRequest
		if err := c.Bind(&req); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}
		if errs := collectValidationErrors(&req); len(errs) > 0 {
			return c.JSON(http.StatusBadRequest, models.IntakeSubmitResponse{Errors: errs})
		}

		deadline, err := parseDeadline(req.Deadline)
		if err != nil {
			return utils.NewBadRequestError("Deadline must be RFC 3339 or YYYY-MM-DD")
		}

		task := &models.Task{
			Title:       req.Title,
			JobRole:     req.JobRole,
			Skills:      req.Skills,
			Description: req.Description,
			AssignedBy:  owner(c),
			AssignedTo:  req.AssignedTo,
			Deadline:    deadline,
		}
		if err := deps.Tasks.Create(c.Request().Context(), task); err != nil {
			return utils.NewInternalServerError("Failed to create task")
		}

		return c.JSON(http.StatusOK, models.TaskView{Task: *task, Urgency: task.UrgencyAt(time.Now())})
	}
}

// TaskStatusHandler moves a task through its lifecycle.
func TaskStatusHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body struct {
			Status models.TaskStatus `json:"status"`
		}
		if err := c.Bind(&body); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}

		switch body.Status {
		case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		default:
			return utils.NewBadRequestError("Unknown task status: "+string(body.Status))
		}

		err := deps.Tasks.SetStatus(c.Request().Context(), c.Param("id"), body.Status)
		if err == storage.ErrNotFound {
			return notFound("task")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to update task status")
		}

		return c.JSON(http.StatusOK, models.StatusResponse{Success: true, Status: string(body.Status)})
	}
}

func parseDeadline(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
