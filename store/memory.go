package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rajangupta9/tasktracker/models"
)

// MemoryStore keeps tasks in a map. Used by tests and STORE=memory.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[primitive.ObjectID]*models.Task
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[primitive.ObjectID]*models.Task),
		now:   time.Now,
	}
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Task{}
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, *t.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepareNew(task, s.now())
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(t)
	t.Revision++
	t.UpdatedAt = s.now()
	return t.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) MutateComments(ctx context.Context, id primitive.ObjectID, fn func(*models.Task) error) (*models.Task, error) {
	load := func(ctx context.Context) (*models.Task, error) {
		return s.Get(ctx, id)
	}
	return mutateWithRetry(ctx, load, s.swapComments, fn)
}

func (s *MemoryStore) swapComments(_ context.Context, task *models.Task, rev int64) (*models.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[task.ID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if cur.Revision != rev {
		return nil, false, nil
	}
	cur.Comments = append([]models.Comment{}, task.Comments...)
	cur.Revision++
	cur.UpdatedAt = s.now()
	return cur.Clone(), true, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }
