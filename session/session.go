// Package session holds the client-side state for one logged in user and
// the operations the UI calls. Every mutation is followed by a full reload.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Rajangupta9/tasktracker/client"
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrNotLoggedIn   = errors.New("not logged in, run login first")
	ErrNoSuchTask    = errors.New("no task matches")
	ErrAmbiguousTask = errors.New("task reference is ambiguous")
)

type Session struct {
	api    *client.Client
	logger *log.Logger

	mu    sync.Mutex
	user  string
	token string
	tasks []client.Task
}

func New(api *client.Client, logger *log.Logger) *Session {
	return &Session{api: api, logger: logger}
}

// Restore puts back a user and token saved by a previous run.
func (s *Session) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = st.User
	s.token = st.Token
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{User: s.user, Token: s.token, Server: s.api.BaseURL}
}

// conn returns a client carrying the current token. The shared client is
// never written after New.
func (s *Session) conn() *client.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api.WithToken(s.token)
}

func (s *Session) Login(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	token := ""
	res, err := s.conn().Login(ctx, name)
	var apiErr *client.APIError
	switch {
	case err == nil:
		token = res.Token
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		// server without a login route: the name alone is the identity
	default:
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = name
	s.token = token
	s.tasks = nil
	return nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = ""
	s.token = ""
	s.tasks = nil
}

func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Tasks returns a copy of the current list.
func (s *Session) Tasks() []client.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]client.Task(nil), s.tasks...)
}

// Stats reports completed and total counts.
func (s *Session) Stats() (completed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.Completed {
			completed++
		}
	}
	return completed, len(s.tasks)
}

// LoadTasks replaces the list wholesale. On failure the previous list stays.
func (s *Session) LoadTasks(ctx context.Context) error {
	user := s.User()
	if user == "" {
		return ErrNotLoggedIn
	}

	tasks, err := s.conn().GetTasks(ctx, user)
	if err != nil {
		s.logger.Warn("load tasks failed", "user", user, "err", err)
		return err
	}
	for i := range tasks {
		if tasks[i].Comments == nil {
			tasks[i].Comments = []client.Comment{}
		}
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

// AddTask does nothing for an empty title.
func (s *Session) AddTask(ctx context.Context, title, priority string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	user := s.User()
	if user == "" {
		return ErrNotLoggedIn
	}
	if _, err := s.conn().CreateTask(ctx, client.NewTask{Title: title, UserID: user, Priority: priority}); err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	return s.LoadTasks(ctx)
}

func (s *Session) ToggleTask(ctx context.Context, task client.Task) error {
	completed := !task.Completed
	if _, err := s.conn().UpdateTask(ctx, task.ID, client.TaskPatch{Completed: &completed}); err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	return s.LoadTasks(ctx)
}

// EditTask does nothing for an empty title.
func (s *Session) EditTask(ctx context.Context, id client.ID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if _, err := s.conn().UpdateTask(ctx, id, client.TaskPatch{Title: &title}); err != nil {
		return fmt.Errorf("edit task: %w", err)
	}
	return s.LoadTasks(ctx)
}

func (s *Session) DeleteTask(ctx context.Context, id client.ID) error {
	if err := s.conn().DeleteTask(ctx, id); err != nil {
		s.logger.Error("delete task failed", "id", id, "err", err)
		return fmt.Errorf("delete task: %w", err)
	}
	return s.LoadTasks(ctx)
}

// AddComment posts "<user>: text". It returns a nil task when text is empty.
func (s *Session) AddComment(ctx context.Context, taskID client.ID, text string) (*client.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	user := s.User()
	if user == "" {
		return nil, ErrNotLoggedIn
	}
	task, err := s.conn().AddComment(ctx, taskID, user+": "+text)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return task, s.LoadTasks(ctx)
}

// EditComment replaces the comment text verbatim.
func (s *Session) EditComment(ctx context.Context, taskID, commentID client.ID, text string) (*client.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	task, err := s.conn().UpdateComment(ctx, taskID, commentID, text)
	if err != nil {
		return nil, fmt.Errorf("edit comment: %w", err)
	}
	return task, s.LoadTasks(ctx)
}

func (s *Session) DeleteComment(ctx context.Context, taskID, commentID client.ID) (*client.Task, error) {
	task, err := s.conn().DeleteComment(ctx, taskID, commentID)
	if err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return task, s.LoadTasks(ctx)
}

// Resolve finds a loaded task by list position (1-based), full id or a
// unique id prefix or suffix.
func (s *Session) Resolve(ref string) (client.Task, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	tasks := s.Tasks()

	if n, err := strconv.Atoi(ref); err == nil && len(ref) < 6 {
		if n >= 1 && n <= len(tasks) {
			return tasks[n-1], nil
		}
		return client.Task{}, fmt.Errorf("%w %q", ErrNoSuchTask, ref)
	}

	var match []client.Task
	for _, t := range tasks {
		if string(t.ID) == ref {
			return t, nil
		}
		if matchesID(string(t.ID), ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return client.Task{}, fmt.Errorf("%w %q", ErrNoSuchTask, ref)
	case 1:
		return match[0], nil
	}
	return client.Task{}, fmt.Errorf("%w: %q matches %d tasks", ErrAmbiguousTask, ref, len(match))
}

// ResolveComment finds a comment on task the same way Resolve finds tasks.
func ResolveComment(task client.Task, ref string) (client.Comment, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if n, err := strconv.Atoi(ref); err == nil && len(ref) < 6 {
		if n >= 1 && n <= len(task.Comments) {
			return task.Comments[n-1], nil
		}
		return client.Comment{}, fmt.Errorf("no comment %q on %q", ref, task.Title)
	}
	var match []client.Comment
	for _, c := range task.Comments {
		if string(c.ID) == ref {
			return c, nil
		}
		if matchesID(string(c.ID), ref) {
			match = append(match, c)
		}
	}
	if len(match) == 1 {
		return match[0], nil
	}
	return client.Comment{}, fmt.Errorf("no single comment matches %q on %q", ref, task.Title)
}

// ObjectIDs created in the same second share a prefix, so the short form
// printed by the CLI is the tail.
func matchesID(id, ref string) bool {
	return ref != "" && (strings.HasPrefix(id, ref) || strings.HasSuffix(id, ref))
}
