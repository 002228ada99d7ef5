package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Priority  Priority           `bson:"priority" json:"priority"`
	Completed bool               `bson:"completed" json:"completed"`
	UserID    string             `bson:"userId" json:"userId"` // free text, no user table behind it
	Comments  []Comment          `bson:"comments" json:"comments"`
	Revision  int64              `bson:"rev" json:"rev"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// TaskPatch is a partial update. Nil fields are left alone.
type TaskPatch struct {
	Title     *string   `json:"title,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
	UserID    *string   `json:"userId,omitempty"`
}

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrUserIDRequired   = errors.New("userId is required")
	ErrEmptyPatch       = errors.New("no update fields provided")
	ErrCommentRequired  = errors.New("comment text is required")
	ErrPriorityRequired = errors.New("priority cannot be empty")
)

// Normalize fills defaults and checks the fields a new task must carry.
func (t *Task) Normalize() error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(t.UserID) == "" {
		return ErrUserIDRequired
	}
	p, err := ParsePriority(string(t.Priority))
	if err != nil {
		return err
	}
	t.Priority = p
	if t.Comments == nil {
		t.Comments = []Comment{}
	}
	for i := range t.Comments {
		if err := ValidateCommentText(t.Comments[i].Text); err != nil {
			return err
		}
	}
	return nil
}

func (p *TaskPatch) Normalize() error {
	if p.Title == nil && p.Priority == nil && p.Completed == nil && p.UserID == nil {
		return ErrEmptyPatch
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return ErrTitleRequired
		}
		p.Title = &title
	}
	if p.Priority != nil {
		// empty only defaults on create
		if strings.TrimSpace(string(*p.Priority)) == "" {
			return ErrPriorityRequired
		}
		pr, err := ParsePriority(string(*p.Priority))
		if err != nil {
			return err
		}
		p.Priority = &pr
	}
	if p.UserID != nil && strings.TrimSpace(*p.UserID) == "" {
		return ErrUserIDRequired
	}
	return nil
}

// Apply copies the set fields of p onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.UserID != nil {
		t.UserID = *p.UserID
	}
}

func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrCommentRequired
	}
	return nil
}

// NewComment builds a comment with a fresh id.
func NewComment(text string, now time.Time) (Comment, error) {
	if err := ValidateCommentText(text); err != nil {
		return Comment{}, err
	}
	return Comment{ID: primitive.NewObjectID(), Text: text, CreatedAt: now}, nil
}

// CommentIndex returns the position of the comment with the given id, or -1.
func (t *Task) CommentIndex(id primitive.ObjectID) int {
	for i := range t.Comments {
		if t.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Task) Clone() *Task {
	c := *t
	c.Comments = append([]Comment(nil), t.Comments...)
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	return &c
}
