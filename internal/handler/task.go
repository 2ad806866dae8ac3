package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-core-api/internal/core"
	"github.com/BuzzLyutic/task-core-api/internal/repo"
	"github.com/BuzzLyutic/task-core-api/internal/service"
	"github.com/BuzzLyutic/task-core-api/internal/worker"
	"github.com/BuzzLyutic/task-core-api/pkg/request"
	"github.com/BuzzLyutic/task-core-api/pkg/respond"
)

var errBadID = errors.New("invalid task id")

type createTaskRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type TaskHandler struct {
	service service.Service
	logger  *zap.Logger
}

func NewTaskHandler(srv service.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debug("rejected create request", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := h.service.Complete(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadID):
		respond.Error(w, r, http.StatusBadRequest, errBadID.Error())
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, core.ErrInvalidName.Error())
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "task not found")
	case errors.Is(err, core.ErrAlreadyCompleted):
		respond.Error(w, r, http.StatusConflict, core.ErrAlreadyCompleted.Error())
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, worker.ErrPoolStopped):
		respond.Error(w, r, http.StatusServiceUnavailable, "service is shutting down")
	default:
		h.logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
