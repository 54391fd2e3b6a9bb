package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/bonsai/api/http/middleware"
	"github.com/artem13815/bonsai/api/http/presenter"
	"github.com/artem13815/bonsai/pkg/task"
)

// TaskHandler exposes task CRUD for the authenticated caller.
type TaskHandler struct {
	useCase task.UseCase
}

func NewTaskHandler(useCase task.UseCase) *TaskHandler {
	return &TaskHandler{useCase: useCase}
}

func taskID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

// Create adds a task owned by the caller.
// @Summary Create task
// @Tags    tasks
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body task.CreateInput true "task"
// @Success 201 {object} task.Task
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req task.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	t, err := h.useCase.Create(c.UserContext(), middleware.Principal(c), req)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, t)
}

// List returns the caller's tasks, newest first.
// @Summary List tasks
// @Tags    tasks
// @Produce json
// @Security BearerAuth
// @Param   completed query bool false "filter by completion"
// @Param   limit     query int  false "page size (max 200)"
// @Param   offset    query int  false "offset"
// @Success 200 {array} task.Task
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	completed, ok := parseOptionalBool(c, "completed")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "completed must be true or false")
	}
	limit, offset := parseLimitOffset(c, task.DefaultLimit, task.MaxLimit)
	items, err := h.useCase.List(c.UserContext(), middleware.Principal(c), task.Filter{
		Completed: completed,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Get returns one task.
// @Summary Get task
// @Tags    tasks
// @Produce json
// @Security BearerAuth
// @Param   id path int true "task id"
// @Success 200 {object} task.Task
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id} [get]
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid task id")
	}
	t, err := h.useCase.Get(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, t)
}

// Update applies a partial update.
// @Summary Update task
// @Tags    tasks
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id    path int              true "task id"
// @Param   input body task.UpdateInput true "fields to change"
// @Success 200 {object} task.Task
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid task id")
	}
	var req task.UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	t, err := h.useCase.Update(c.UserContext(), middleware.Principal(c), id, req)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, t)
}

// Delete removes a task.
// @Summary Delete task
// @Tags    tasks
// @Produce json
// @Security BearerAuth
// @Param   id path int true "task id"
// @Success 200 {object} presenter.MessageResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid task id")
	}
	if err := h.useCase.Delete(c.UserContext(), middleware.Principal(c), id); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.MessageResponse{Message: "Task deleted successfully"})
}

// Toggle flips the completed flag.
// @Summary Toggle task
// @Tags    tasks
// @Produce json
// @Security BearerAuth
// @Param   id path int true "task id"
// @Success 200 {object} task.Task
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid task id")
	}
	t, err := h.useCase.Toggle(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, t)
}
