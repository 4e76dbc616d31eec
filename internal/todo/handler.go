package todo

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/go-todo-api/internal/apperr"
	"github.com/redmonkez12/go-todo-api/internal/auth"
	"github.com/redmonkez12/go-todo-api/internal/httputil"
	"github.com/redmonkez12/go-todo-api/internal/logging"
)

// Handler contains HTTP handlers for the todo endpoints. All of them expect
// auth.Middleware.RequireAuth to have run.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRequest is the body of POST /api/todos
type CreateRequest struct {
	Title       string `json:"title" example:"Buy milk"`
	Description string `json:"description" example:"2 litres"`
}

// Routes mounts the todo endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// scope returns the caller's view of the todo service.
func (h *Handler) scope(r *http.Request) *OwnerScope {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	return h.service.For(userID)
}

// List returns the caller's todos
// @Summary      List todos
// @Description  All todos of the authenticated user, newest first
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  Todo
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /api/todos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.scope(r).List(r.Context())
	if err != nil {
		h.fail(w, r, "list todos", err)
		return
	}

	httputil.RespondJSON(w, todos, http.StatusOK)
}

// Get returns a single todo
// @Summary      Get todo
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Success      200 {object} Todo
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/todos/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.scope(r).Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get todo", err)
		return
	}

	httputil.RespondJSON(w, t, http.StatusOK)
}

// Create adds a todo
// @Summary      Create todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRequest true "New todo"
// @Success      201 {object} Todo
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /api/todos [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("invalid create todo body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.scope(r).Create(r.Context(), req.Title, req.Description)
	if err != nil {
		h.fail(w, r, "create todo", err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("todo created", "todo_id", t.ID)

	httputil.RespondJSON(w, t, http.StatusCreated)
}

// Update changes the supplied fields of a todo
// @Summary      Update todo
// @Description  Only the fields present in the body are changed
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string true "Todo ID"
// @Param        request body Patch  true "Fields to change"
// @Success      200 {object} Todo
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/todos/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("invalid update todo body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.scope(r).Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, "update todo", err)
		return
	}

	httputil.RespondJSON(w, t, http.StatusOK)
}

// Delete removes a todo
// @Summary      Delete todo
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Success      200 {object} httputil.MessageResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/todos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.scope(r).Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete todo", err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("todo deleted", "todo_id", chi.URLParam(r, "id"))

	httputil.RespondMessage(w, "todo deleted", http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := logging.GetLoggerFromContext(r.Context())
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.Error(op+" failed", "error", err.Error())
	} else {
		logger.Warn(op+" failed", "error", err.Error())
	}
	httputil.RespondAppError(w, err, "internal server error")
}
