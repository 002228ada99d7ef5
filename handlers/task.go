package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rajangupta9/tasktracker/middleware"
	"github.com/Rajangupta9/tasktracker/models"
	"github.com/Rajangupta9/tasktracker/store"
	"github.com/Rajangupta9/tasktracker/utils"
)

const requestTimeout = 5 * time.Second

type TaskHandler struct {
	store       store.TaskStore
	logger      *log.Logger
	authEnabled bool
}

func NewTaskHandler(s store.TaskStore, logger *log.Logger, authEnabled bool) *TaskHandler {
	return &TaskHandler{store: s, logger: logger, authEnabled: authEnabled}
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID := c.Query("userId")
	if user, ok := h.currentUser(c); ok {
		userID = user
	}
	if userID == "" {
		utils.ResponseWithError(c, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tasks, err := h.store.ListByUser(ctx, userID)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	models.SortTasks(tasks)

	utils.ResponseWithJson(c, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var task models.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if user, ok := h.currentUser(c); ok {
		task.UserID = user
	}
	if err := task.Normalize(); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Create(ctx, &task); err != nil {
		h.writeStoreError(c, err)
		return
	}
	h.logger.Debug("task created", "id", task.ID.Hex(), "user", task.UserID)

	utils.ResponseWithJson(c, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if err := patch.Normalize(); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if user, ok := h.currentUser(c); ok && patch.UserID != nil && *patch.UserID != user {
		utils.ResponseWithError(c, http.StatusForbidden, "cannot hand a task to another user")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.checkOwner(ctx, c, id); err != nil {
		h.writeStoreError(c, err)
		return
	}

	task, err := h.store.Update(ctx, id, patch)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	utils.ResponseWithJson(c, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.checkOwner(ctx, c, id); err != nil {
		h.writeStoreError(c, err)
		return
	}
	if err := h.store.Delete(ctx, id); err != nil {
		h.writeStoreError(c, err)
		return
	}

	utils.ResponseWithJson(c, http.StatusOK, gin.H{"message": "Task deleted"})
}

// currentUser is the token user when auth is on.
func (h *TaskHandler) currentUser(c *gin.Context) (string, bool) {
	if !h.authEnabled {
		return "", false
	}
	return middleware.UserID(c)
}

// checkOwner hides other users' tasks behind ErrNotFound.
func (h *TaskHandler) checkOwner(ctx context.Context, c *gin.Context, id primitive.ObjectID) error {
	user, ok := h.currentUser(c)
	if !ok {
		return nil
	}
	task, err := h.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return ownedBy(task, user)
}

func ownedBy(task *models.Task, user string) error {
	if task.UserID != user {
		return store.ErrNotFound
	}
	return nil
}

func (h *TaskHandler) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		utils.ResponseWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		utils.ResponseWithError(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, store.ErrCommentNotFound):
		utils.ResponseWithError(c, http.StatusNotFound, "Comment not found")
	case errors.Is(err, store.ErrConflict):
		utils.ResponseWithError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		utils.ResponseWithError(c, http.StatusInternalServerError, err.Error())
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
