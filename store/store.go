// Package store persists tasks and their embedded comments.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rajangupta9/tasktracker/models"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidID       = errors.New("invalid id")
	ErrConflict        = errors.New("task was modified concurrently, try again")
)

// MaxCommentRetries bounds how often a comment mutation is re-applied after
// losing a revision race.
const MaxCommentRetries = 3

// TaskStore is implemented by MongoStore and MemoryStore.
type TaskStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Task, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// MutateComments loads the task, runs fn on it and saves the comment list
	// only if nobody else wrote the task in between.
	MutateComments(ctx context.Context, id primitive.ObjectID, fn func(*models.Task) error) (*models.Task, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// prepareNew sets the fields a store owns on insert. Comments sent with a new
// task are re-issued ids so each one stays addressable.
func prepareNew(task *models.Task, now time.Time) {
	task.ID = primitive.NewObjectID()
	task.Revision = 0
	task.CreatedAt = now
	task.UpdatedAt = now
	comments := make([]models.Comment, 0, len(task.Comments))
	for _, c := range task.Comments {
		comments = append(comments, models.Comment{ID: primitive.NewObjectID(), Text: c.Text, CreatedAt: now})
	}
	task.Comments = comments
}

// ParseID turns a 24 character hex string into an ObjectID.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// compareAndSwap saves task if the stored revision still equals rev.
// It reports false when the revision moved on.
type compareAndSwap func(ctx context.Context, task *models.Task, rev int64) (*models.Task, bool, error)

func mutateWithRetry(ctx context.Context, load func(context.Context) (*models.Task, error), save compareAndSwap, fn func(*models.Task) error) (*models.Task, error) {
	for attempt := 0; attempt < MaxCommentRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		task, err := load(ctx)
		if err != nil {
			return nil, err
		}
		rev := task.Revision
		if err := fn(task); err != nil {
			return nil, err
		}
		saved, ok, err := save(ctx, task, rev)
		if err != nil {
			return nil, err
		}
		if ok {
			return saved, nil
		}
	}
	return nil, ErrConflict
}
