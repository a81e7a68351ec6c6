package client

import (
	"context"
	"net/http"
	"net/url"

	"hiredesk/pkg/models"
)

// GetSearch fetches one search, typically to prefill the shortlist form.
func (c *Client) GetSearch(ctx context.Context, searchID string) (*models.Search, error) {
	query := url.Values{"search_id": {searchID}}
	var search models.Search
	if err := c.getJSON(ctx, "/api/search", query, &search); err != nil {
		return nil, err
	}
	return &search, nil
}

// ArchiveSearch freezes a finished search into history.
func (c *Client) ArchiveSearch(ctx context.Context, searchID string) error {
	query := url.Values{"search_id": {searchID}}
	var resp models.StatusResponse
	return c.do(ctx, http.MethodPost, "/api/archive-search", query, nil, "", &resp)
}

// GetTask fetches one assignment record, typically to seed a new search.
func (c *Client) GetTask(ctx context.Context, taskID string) (*models.TaskView, error) {
	var task models.TaskView
	if err := c.getJSON(ctx, "/api/tasks/"+url.PathEscape(taskID), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks fetches the caller's assignments with derived urgency tiers.
func (c *Client) ListTasks(ctx context.Context, assignee string) ([]models.TaskView, error) {
	query := url.Values{}
	if assignee != "" {
		query.Set("assignee", assignee)
	}
	var resp models.TaskListResponse
	if err := c.getJSON(ctx, "/api/tasks", query, &resp); err != nil {
		return nil, err
	}
	if err := successError(resp.Success, ""); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}
