// Package grader wraps the routes of the external grading service that the
// achievement engine reads from. Requests authenticate with the user's
// grading-service session token, sent as the connect.sid cookie.
package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Result types reported by the grading service.
const (
	ResultSuccess      = "SUCCESS"
	ResultFailed       = "FAILED"
	ResultCompileError = "COMPILE_ERROR"
	ResultRuntimeError = "RUNTIME_ERROR"
	ResultTimeout      = "TIMEOUT"
)

// Course ids are cached per session token. Tokens rotate, so entries
// expire and the cache holds at most maxCourses of them.
const (
	courseTTL  = 30 * time.Minute
	maxCourses = 10000
)

// ErrUnavailable is returned when the grading service cannot be reached or
// answers with a non-2xx status.
var ErrUnavailable = errors.New("grading service unavailable")

// Submission is one graded submission attempt.
type Submission struct {
	ID         int     `json:"id"`
	TaskID     int     `json:"taskid"`
	Timestamp  int64   `json:"timestamp"`
	Content    string  `json:"content"`
	ResultType string  `json:"result_type"`
	Score      float64 `json:"score"`
}

// Correct reports whether the submission passed all tests.
func (s Submission) Correct() bool {
	return s.ResultType == ResultSuccess
}

// Task is a task of the user's active course.
type Task struct {
	TaskID      int    `json:"taskid"`
	Description string `json:"task_description"`
	Lang        string `json:"lang"`
	OrderBy     int    `json:"order_by"`
}

// Client talks to the grading service. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	// session token -> course id
	courses   *ristretto.Cache[string, string]
	courseTTL time.Duration
}

// New creates a client for baseURL. A zero timeout means 10 seconds.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
		courseTTL: courseTTL,
	}

	courses, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters:        10 * maxCourses,
		MaxCost:            maxCourses,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		logger.Warn("course cache disabled", slog.Any("error", err))
	} else {
		c.courses = courses
	}
	return c
}

// Close releases the course cache.
func (c *Client) Close() {
	if c.courses != nil {
		c.courses.Close()
	}
}

// CourseID returns the course the session is enrolled in.
func (c *Client) CourseID(ctx context.Context, token string) (string, error) {
	if c.courses != nil {
		if course, ok := c.courses.Get(token); ok {
			return course, nil
		}
	}

	var session struct {
		CourseID string `json:"courseid"`
	}
	if err := c.getJSON(ctx, token, "/sessiondata", &session); err != nil {
		return "", err
	}
	if session.CourseID == "" {
		return "", fmt.Errorf("%w: session has no course", ErrUnavailable)
	}

	if c.courses != nil {
		c.courses.SetWithTTL(token, session.CourseID, 1, c.courseTTL)
		c.courses.Wait()
	}
	return session.CourseID, nil
}

// SolvedTaskIDs returns the ids of all tasks the user has solved.
func (c *Client) SolvedTaskIDs(ctx context.Context, token string) ([]int, error) {
	course, err := c.CourseID(ctx, token)
	if err != nil {
		return nil, err
	}

	var ids []int
	if err := c.getJSON(ctx, token, "/course/"+url.PathEscape(course)+"/progress", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Tasks returns all tasks of the user's course.
func (c *Client) Tasks(ctx context.Context, token string) ([]Task, error) {
	course, err := c.CourseID(ctx, token)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := c.getJSON(ctx, token, "/course/"+url.PathEscape(course)+"/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TaskCount returns the number of tasks in the user's course.
func (c *Client) TaskCount(ctx context.Context, token string) (int, error) {
	tasks, err := c.Tasks(ctx, token)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

// Submissions returns every submission of the user in the active course.
func (c *Client) Submissions(ctx context.Context, token string) ([]Submission, error) {
	course, err := c.CourseID(ctx, token)
	if err != nil {
		return nil, err
	}

	var subs []Submission
	if err := c.getJSON(ctx, token, "/course/"+url.PathEscape(course)+"/tasks/all/submissions", &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) getJSON(ctx context.Context, token, route string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+route, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", route, err)
	}
	req.AddCookie(&http.Cookie{Name: "connect.sid", Value: token})
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrUnavailable, route, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("grader request",
		slog.String("route", route),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The grading service answers 500 for every kind of failure.
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: GET %s: status %d", ErrUnavailable, route, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, route, err)
	}
	return nil
}
