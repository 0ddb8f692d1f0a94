// Package client talks to the classroom backend's REST endpoints. It only
// shapes requests and responses; retries and failure recovery stay with the
// caller, and every returned error leaves the entity store untouched.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/models"
)

const defaultTimeout = 15 * time.Second

// Client issues authenticated requests against the classroom backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// New constructs a client. The token is an opaque bearer credential owned by
// the external auth collaborator.
func New(baseURL, token string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.With().Str("component", "rest_client").Logger(),
	}
}

// FetchClassrooms lists the teacher's classrooms.
func (c *Client) FetchClassrooms(ctx context.Context) ([]models.Classroom, error) {
	var out []models.Classroom
	if err := c.do(ctx, http.MethodGet, "core/classrooms/", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch classrooms: %w", err)
	}
	return out, nil
}

// FetchClassroom resolves one classroom by its join code.
func (c *Client) FetchClassroom(ctx context.Context, code string) (models.Classroom, error) {
	classrooms, err := c.FetchClassrooms(ctx)
	if err != nil {
		return models.Classroom{}, err
	}
	for _, cr := range classrooms {
		if cr.Code == code {
			return cr, nil
		}
	}
	return models.Classroom{}, fmt.Errorf("fetch classroom: no classroom with code %q", code)
}

// UpdateClassroom writes the classroom record back, carrying roster index
// changes (student add/remove).
func (c *Client) UpdateClassroom(ctx context.Context, classroom models.Classroom) (models.Classroom, error) {
	var out models.Classroom
	path := fmt.Sprintf("core/classrooms/%d/", classroom.ID)
	if err := c.do(ctx, http.MethodPut, path, nil, classroom, &out); err != nil {
		return models.Classroom{}, fmt.Errorf("update classroom: %w", err)
	}
	return out, nil
}

// FetchRoster lists the students of a classroom.
func (c *Client) FetchRoster(ctx context.Context, code string) ([]models.Student, error) {
	var out []models.Student
	query := url.Values{"code": {code}}
	if err := c.do(ctx, http.MethodGet, "core/student_list/", query, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	return out, nil
}

// RenameStudent updates a roster entry's display name.
func (c *Client) RenameStudent(ctx context.Context, classroomID int, payload dto.StudentRenameRequest) error {
	path := fmt.Sprintf("core/student_list/%d/", classroomID)
	if err := c.do(ctx, http.MethodPut, path, nil, payload, nil); err != nil {
		return fmt.Errorf("rename student: %w", err)
	}
	return nil
}

// FetchTasks lists tasks, optionally scoped to another classroom's code
// (used by the import workflow).
func (c *Client) FetchTasks(ctx context.Context, code string) ([]models.Task, error) {
	var out []models.Task
	var query url.Values
	if code != "" {
		query = url.Values{"code": {code}}
	}
	if err := c.do(ctx, http.MethodGet, "core/tasks/", query, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	return out, nil
}

// CreateTask posts a new task and returns the authoritative entity.
func (c *Client) CreateTask(ctx context.Context, payload dto.TaskCreateRequest) (models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPost, "core/tasks/", nil, payload, &out); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return out, nil
}

// BulkCreateTasks posts several tasks at once (import commit).
func (c *Client) BulkCreateTasks(ctx context.Context, payload []dto.TaskCreateRequest) ([]models.Task, error) {
	var out []models.Task
	query := url.Values{"bulk": {"true"}}
	if err := c.do(ctx, http.MethodPost, "core/tasks/", query, payload, &out); err != nil {
		return nil, fmt.Errorf("bulk create tasks: %w", err)
	}
	return out, nil
}

// UpdateTask rewrites an existing task.
func (c *Client) UpdateTask(ctx context.Context, id int, payload dto.TaskUpdateRequest) (models.Task, error) {
	var out models.Task
	path := fmt.Sprintf("core/tasks/%d/", id)
	if err := c.do(ctx, http.MethodPut, path, nil, payload, &out); err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return out, nil
}

// DeleteTask removes a task; its submissions conceptually go with it.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	path := fmt.Sprintf("core/tasks/%d/", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// FetchSubmissions lists a classroom's submissions.
func (c *Client) FetchSubmissions(ctx context.Context, code string) ([]models.Submission, error) {
	var out []models.Submission
	query := url.Values{"code": {code}}
	if err := c.do(ctx, http.MethodGet, "core/submissions/", query, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}
	return out, nil
}

// FetchSubmissionStatuses lists a classroom's self-reported work statuses.
func (c *Client) FetchSubmissionStatuses(ctx context.Context, code string) ([]models.SubmissionStatus, error) {
	var out []models.SubmissionStatus
	query := url.Values{"code": {code}}
	if err := c.do(ctx, http.MethodGet, "core/submission_status/", query, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch submission statuses: %w", err)
	}
	return out, nil
}

// ReviewSubmission writes a review. The backend sometimes omits the image
// field from the response, so the prior known value is re-attached before
// the submission is handed back.
func (c *Client) ReviewSubmission(ctx context.Context, id int, payload dto.ReviewRequest, priorImage string) (models.Submission, error) {
	var out models.Submission
	path := fmt.Sprintf("core/submissions/%d/", id)
	if err := c.do(ctx, http.MethodPut, path, nil, payload, &out); err != nil {
		return models.Submission{}, fmt.Errorf("review submission: %w", err)
	}
	if out.Image == "" {
		out.Image = priorImage
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.Warn().Int("status", res.StatusCode).Str("path", path).Msg("backend returned an error")
		return fmt.Errorf("%s %s: unexpected status %d", method, path, res.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
