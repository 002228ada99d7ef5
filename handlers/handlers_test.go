package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rajangupta9/tasktracker/models"
	"github.com/Rajangupta9/tasktracker/store"
	"github.com/Rajangupta9/tasktracker/utils"
)

var testSecret = []byte("handler-secret")

type testServer struct {
	store  *store.MemoryStore
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T, auth bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := store.NewMemoryStore()
	router := NewRouter(RouterConfig{
		Store:       s,
		Logger:      log.New(io.Discard),
		AuthEnabled: auth,
		JWTSecret:   testSecret,
	})
	return &testServer{store: s, router: router}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func (ts *testServer) create(t *testing.T, title, user, priority string) models.Task {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/tasks", gin.H{"title": title, "userId": user, "priority": priority})
	if w.Code != http.StatusCreated {
		t.Fatalf("create %q: status %d body %s", title, w.Code, w.Body.String())
	}
	return decode[models.Task](t, w)
}

func (ts *testServer) list(t *testing.T, user string) []models.Task {
	t.Helper()
	w := ts.do(t, http.MethodGet, "/api/tasks?userId="+user, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d body %s", w.Code, w.Body.String())
	}
	return decode[[]models.Task](t, w)
}

func TestCreateThenFetch(t *testing.T) {
	ts := newTestServer(t, false)
	ts.create(t, "Buy milk", "u1", "High")
	ts.create(t, "Not mine", "u2", "Low")

	tasks := ts.list(t, "u1")
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Buy milk" || got.Priority != models.PriorityHigh || got.UserID != "u1" {
		t.Errorf("task = %+v", got)
	}
	if got.Completed {
		t.Error("new task is completed")
	}
	if got.Comments == nil || len(got.Comments) != 0 {
		t.Errorf("comments = %#v, want empty list", got.Comments)
	}
}

func TestCreateDefaultsPriority(t *testing.T) {
	ts := newTestServer(t, false)
	task := ts.create(t, "No priority", "u1", "")
	if task.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want Medium", task.Priority)
	}
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t, false)
	tests := []struct {
		name string
		body any
	}{
		{"missing title", gin.H{"userId": "u1"}},
		{"blank title", gin.H{"title": "  ", "userId": "u1"}},
		{"missing user", gin.H{"title": "x"}},
		{"bad priority", gin.H{"title": "x", "userId": "u1", "priority": "Urgent"}},
		{"no body", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/tasks", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			if _, ok := decode[map[string]string](t, w)["message"]; !ok {
				t.Errorf("400 body has no message: %s", w.Body.String())
			}
		})
	}
}

func TestCreateReissuesCommentIDs(t *testing.T) {
	ts := newTestServer(t, false)
	body := gin.H{
		"title":    "x",
		"userId":   "u1",
		"comments": []gin.H{{"text": "a"}, {"text": "b"}},
	}
	w := ts.do(t, http.MethodPost, "/api/tasks", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	task := decode[models.Task](t, w)
	if len(task.Comments) != 2 {
		t.Fatalf("comments = %+v", task.Comments)
	}
	a, b := task.Comments[0], task.Comments[1]
	if a.ID.IsZero() || b.ID.IsZero() || a.ID == b.ID {
		t.Fatalf("comment ids %s %s, want distinct non-zero", a.ID.Hex(), b.ID.Hex())
	}
	if a.CreatedAt.IsZero() {
		t.Error("comment createdAt not set")
	}

	w = ts.do(t, http.MethodDelete, "/api/tasks/"+task.ID.Hex()+"/comments/"+a.ID.Hex(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete comment: status %d body %s", w.Code, w.Body.String())
	}
	left := ts.list(t, "u1")[0].Comments
	if len(left) != 1 || left[0].ID != b.ID {
		t.Fatalf("remaining comments = %+v", left)
	}

	w = ts.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "x", "userId": "u1", "comments": []gin.H{{"text": " "}}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank comment on create: status %d", w.Code)
	}
}

func TestGetTasksSorted(t *testing.T) {
	ts := newTestServer(t, false)
	ts.create(t, "Zebra", "u1", "Low")
	ts.create(t, "Apple", "u1", "High")
	ts.create(t, "Mango", "u1", "Medium")

	tasks := ts.list(t, "u1")
	want := []string{"Apple", "Mango", "Zebra"}
	for i, task := range tasks {
		if task.Title != want[i] {
			t.Fatalf("order = %v, want %v", tasks, want)
		}
	}
}

func TestGetTasksRequiresUser(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(t, http.MethodGet, "/api/tasks", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	ts := newTestServer(t, false)
	task := ts.create(t, "Toggle me", "u1", "Low")
	path := "/api/tasks/" + task.ID.Hex()

	state := task.Completed
	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodPut, path, gin.H{"completed": !state})
		if w.Code != http.StatusOK {
			t.Fatalf("toggle %d: status %d", i, w.Code)
		}
		updated := decode[models.Task](t, w)
		if updated.Completed == state {
			t.Fatalf("toggle %d did not flip", i)
		}
		if updated.Title != "Toggle me" {
			t.Fatalf("partial update clobbered title: %q", updated.Title)
		}
		state = updated.Completed
	}
	if state != task.Completed {
		t.Errorf("after two toggles completed = %v, want %v", state, task.Completed)
	}
}

func TestUpdateTask(t *testing.T) {
	ts := newTestServer(t, false)
	task := ts.create(t, "Old", "u1", "Low")

	w := ts.do(t, http.MethodPut, "/api/tasks/"+task.ID.Hex(), gin.H{"title": "New", "priority": "high"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	got := decode[models.Task](t, w)
	if got.Title != "New" || got.Priority != models.PriorityHigh || got.Revision != 1 {
		t.Errorf("updated = %+v", got)
	}

	cases := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"malformed id", "/api/tasks/undefined", gin.H{"title": "x"}, http.StatusBadRequest},
		{"missing task", "/api/tasks/" + primitive.NewObjectID().Hex(), gin.H{"title": "x"}, http.StatusNotFound},
		{"empty patch", "/api/tasks/" + task.ID.Hex(), gin.H{}, http.StatusBadRequest},
		{"blank title", "/api/tasks/" + task.ID.Hex(), gin.H{"title": ""}, http.StatusBadRequest},
		{"blank priority", "/api/tasks/" + task.ID.Hex(), gin.H{"priority": ""}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPut, tc.path, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.status, w.Body.String())
			}
		})
	}
	if got := ts.list(t, "u1")[0].Priority; got != models.PriorityHigh {
		t.Errorf("priority after rejected patches = %q, want High", got)
	}
}

func TestDeleteTask(t *testing.T) {
	ts := newTestServer(t, false)
	task := ts.create(t, "Doomed", "u1", "Low")

	w := ts.do(t, http.MethodDelete, "/api/tasks/undefined", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id status = %d, want 400", w.Code)
	}
	if len(ts.list(t, "u1")) != 1 {
		t.Fatal("malformed delete changed the store")
	}

	w = ts.do(t, http.MethodDelete, "/api/tasks/"+primitive.NewObjectID().Hex(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing id status = %d, want 404", w.Code)
	}

	w = ts.do(t, http.MethodDelete, "/api/tasks/"+task.ID.Hex(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if msg := decode[map[string]string](t, w)["message"]; msg != "Task deleted" {
		t.Errorf("message = %q", msg)
	}
	if len(ts.list(t, "u1")) != 0 {
		t.Error("task still listed after delete")
	}
}

func TestCommentAddThenUpdate(t *testing.T) {
	ts := newTestServer(t, false)
	task := ts.create(t, "Discuss", "u1", "Medium")
	base := "/api/tasks/" + task.ID.Hex() + "/comments"

	w := ts.do(t, http.MethodPost, base, gin.H{"text": "u1: first"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status %d body %s", w.Code, w.Body.String())
	}
	withComment := decode[models.Task](t, w)
	if len(withComment.Comments) != 1 {
		t.Fatalf("comments = %+v", withComment.Comments)
	}
	commentID := withComment.Comments[0].ID

	w = ts.do(t, http.MethodPut, base+"/"+commentID.Hex(), gin.H{"text": "u1: edited"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status %d body %s", w.Code, w.Body.String())
	}
	edited := decode[models.Task](t, w)
	if len(edited.Comments) != 1 || edited.Comments[0].Text != "u1: edited" || edited.Comments[0].ID != commentID {
		t.Fatalf("after edit comments = %+v", edited.Comments)
	}
}

func TestCommentErrors(t *testing.T) {
	ts := newTestServer(t, false)
	task := ts.create(t, "Discuss", "u1", "Medium")
	base := "/api/tasks/" + task.ID.Hex() + "/comments"
	missing := primitive.NewObjectID().Hex()

	cases := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{"add to missing task", http.MethodPost, "/api/tasks/" + missing + "/comments", gin.H{"text": "x"}, http.StatusNotFound, "Task not found"},
		{"add empty text", http.MethodPost, base, gin.H{"text": " "}, http.StatusBadRequest, ""},
		{"update missing comment", http.MethodPut, base + "/" + missing, gin.H{"text": "x"}, http.StatusNotFound, "Comment not found"},
		{"update malformed comment id", http.MethodPut, base + "/nope", gin.H{"text": "x"}, http.StatusBadRequest, ""},
		{"delete missing comment", http.MethodDelete, base + "/" + missing, nil, http.StatusNotFound, "Comment not found"},
		{"delete on missing task", http.MethodDelete, "/api/tasks/" + missing + "/comments/" + missing, nil, http.StatusNotFound, "Task not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(t, tc.method, tc.path, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.status, w.Body.String())
			}
			if tc.message != "" {
				if got := decode[map[string]string](t, w)["message"]; got != tc.message {
					t.Errorf("message = %q, want %q", got, tc.message)
				}
			}
		})
	}
}

func TestDeleteCommentRemovesOnlyThatOne(t *testing.T) {
	ts := newTestServer(t, false)
	task := ts.create(t, "Busy thread", "u1", "High")
	base := "/api/tasks/" + task.ID.Hex() + "/comments"

	var last models.Task
	for _, text := range []string{"one", "two", "three", "four"} {
		w := ts.do(t, http.MethodPost, base, gin.H{"text": text})
		if w.Code != http.StatusCreated {
			t.Fatalf("add %q: %d", text, w.Code)
		}
		last = decode[models.Task](t, w)
	}
	victim := last.Comments[1]

	w := ts.do(t, http.MethodDelete, base+"/"+victim.ID.Hex(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status %d body %s", w.Code, w.Body.String())
	}
	resp := decode[struct {
		Message string      `json:"message"`
		Task    models.Task `json:"task"`
	}](t, w)
	if resp.Message != "Comment deleted" {
		t.Errorf("message = %q", resp.Message)
	}

	var texts []string
	for _, c := range resp.Task.Comments {
		if c.ID == victim.ID {
			t.Fatal("deleted comment still present")
		}
		texts = append(texts, c.Text)
	}
	want := []string{"one", "three", "four"}
	if len(texts) != len(want) {
		t.Fatalf("comments = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("comments = %v, want %v", texts, want)
		}
	}
}

func TestDeleteTaskDropsComments(t *testing.T) {
	ts := newTestServer(t, false)
	task := ts.create(t, "With notes", "u1", "High")
	ts.do(t, http.MethodPost, "/api/tasks/"+task.ID.Hex()+"/comments", gin.H{"text": "note"})

	ts.do(t, http.MethodDelete, "/api/tasks/"+task.ID.Hex(), nil)
	_, err := ts.store.Get(context.Background(), task.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get after delete err = %v", err)
	}
}

func TestCheck(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(t, http.MethodGet, "/check", nil)
	if w.Code != http.StatusOK || decode[map[string]string](t, w)["status"] != "healthy" {
		t.Fatalf("check = %d %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPost, "/check", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /check status = %d, want 405", w.Code)
	}
}

func TestLoginWithoutAuth(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(t, http.MethodPost, "/api/login", gin.H{"name": "  alice "})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	body := decode[map[string]string](t, w)
	if body["user"] != "alice" {
		t.Errorf("user = %q", body["user"])
	}
	if _, ok := body["token"]; ok {
		t.Error("token issued with auth disabled")
	}

	w = ts.do(t, http.MethodPost, "/api/login", gin.H{"name": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty name status = %d", w.Code)
	}
}

func TestAuthEnabledScopesToTokenUser(t *testing.T) {
	ts := newTestServer(t, true)

	if w := ts.do(t, http.MethodGet, "/api/tasks?userId=alice", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", w.Code)
	}

	w := ts.do(t, http.MethodPost, "/api/login", gin.H{"name": "alice"})
	ts.token = decode[map[string]string](t, w)["token"]
	if ts.token == "" {
		t.Fatal("no token issued")
	}

	// userId in the body is ignored in favour of the token
	mine := ts.create(t, "Alice's", "mallory", "High")
	if mine.UserID != "alice" {
		t.Fatalf("owner = %q, want alice", mine.UserID)
	}

	bobs := &models.Task{Title: "Bob's", UserID: "bob", Priority: models.PriorityLow}
	if err := ts.store.Create(context.Background(), bobs); err != nil {
		t.Fatal(err)
	}

	if tasks := ts.list(t, "bob"); len(tasks) != 1 || tasks[0].UserID != "alice" {
		t.Fatalf("list leaked other user's tasks: %+v", tasks)
	}

	bobPath := "/api/tasks/" + bobs.ID.Hex()
	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, bobPath, gin.H{"completed": true}},
		{http.MethodDelete, bobPath, nil},
		{http.MethodPost, bobPath + "/comments", gin.H{"text": "hi"}},
	} {
		if w := ts.do(t, tc.method, tc.path, tc.body); w.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", tc.method, tc.path, w.Code)
		}
	}

	w = ts.do(t, http.MethodPut, "/api/tasks/"+mine.ID.Hex(), gin.H{"userId": "bob"})
	if w.Code != http.StatusForbidden {
		t.Errorf("reassign status = %d, want 403", w.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	ts := newTestServer(t, true)
	token, err := utils.GenerateJwt(testSecret, "alice", time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	ts.token = token
	if w := ts.do(t, http.MethodGet, "/api/tasks", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) ListByUser(context.Context, string) ([]models.Task, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestStoreFailureIs500WithMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{Store: failingStore{store.NewMemoryStore()}, Logger: log.New(io.Discard)})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks?userId=u1", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decode[map[string]string](t, w)["error"]; got != "connection refused" {
		t.Errorf("error = %q", got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("check status = %d, want 503", w.Code)
	}
}
