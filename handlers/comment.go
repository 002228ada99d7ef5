package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rajangupta9/tasktracker/models"
	"github.com/Rajangupta9/tasktracker/store"
	"github.com/Rajangupta9/tasktracker/utils"
)

type commentRequest struct {
	Text string `json:"text"`
}

func (h *TaskHandler) AddComment(c *gin.Context) {
	taskID, err := store.ParseID(c.Param("id"))
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	comment, err := models.NewComment(req.Text, time.Now())
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, authed := h.currentUser(c)
	task, err := h.store.MutateComments(ctx, taskID, func(t *models.Task) error {
		if authed {
			if err := ownedBy(t, user); err != nil {
				return err
			}
		}
		t.Comments = append(t.Comments, comment)
		return nil
	})
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	utils.ResponseWithJson(c, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateComment(c *gin.Context) {
	taskID, commentID, ok := h.commentIDs(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if err := models.ValidateCommentText(req.Text); err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, authed := h.currentUser(c)
	task, err := h.store.MutateComments(ctx, taskID, func(t *models.Task) error {
		if authed {
			if err := ownedBy(t, user); err != nil {
				return err
			}
		}
		i := t.CommentIndex(commentID)
		if i < 0 {
			return store.ErrCommentNotFound
		}
		t.Comments[i].Text = req.Text
		return nil
	})
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	utils.ResponseWithJson(c, http.StatusOK, task)
}

func (h *TaskHandler) DeleteComment(c *gin.Context) {
	taskID, commentID, ok := h.commentIDs(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, authed := h.currentUser(c)
	task, err := h.store.MutateComments(ctx, taskID, func(t *models.Task) error {
		if authed {
			if err := ownedBy(t, user); err != nil {
				return err
			}
		}
		i := t.CommentIndex(commentID)
		if i < 0 {
			return store.ErrCommentNotFound
		}
		t.Comments = append(t.Comments[:i], t.Comments[i+1:]...)
		return nil
	})
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	utils.ResponseWithJson(c, http.StatusOK, gin.H{"message": "Comment deleted", "task": task})
}

func (h *TaskHandler) commentIDs(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	taskID, err := store.ParseID(c.Param("id"))
	if err != nil {
		h.writeStoreError(c, err)
		return taskID, taskID, false
	}
	commentID, err := store.ParseID(c.Param("commentId"))
	if err != nil {
		h.writeStoreError(c, err)
		return taskID, commentID, false
	}
	return taskID, commentID, true
}
