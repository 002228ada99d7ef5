package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is the canonical identifier on the client side. The server sends plain
// hex strings, but exported documents sometimes carry {"$oid": "..."}.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var wrapped struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return fmt.Errorf("decode id %s: %w", b, err)
	}
	*id = ID(wrapped.OID)
	return nil
}

func (id ID) String() string { return string(id) }

type Task struct {
	ID        ID        `json:"_id"`
	Title     string    `json:"title"`
	Priority  string    `json:"priority"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"userId"`
	Comments  []Comment `json:"comments"`
	Revision  int64     `json:"rev"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        ID        `json:"_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewTask struct {
	Title    string `json:"title"`
	UserID   string `json:"userId"`
	Priority string `json:"priority,omitempty"`
}

// TaskPatch is sent as-is; nil fields are omitted from the body.
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

type LoginResult struct {
	Message string `json:"message"`
	User    string `json:"user"`
	Token   string `json:"token,omitempty"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}
