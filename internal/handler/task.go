package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-photo-api/internal/model"
	"github.com/BuzzLyutic/task-photo-api/internal/repo"
	"github.com/BuzzLyutic/task-photo-api/internal/service"
	"github.com/BuzzLyutic/task-photo-api/internal/storage"
	"github.com/BuzzLyutic/task-photo-api/pkg/respond"
)

const maxUploadMemory = 32 << 20

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
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
	form, closeForm, err := h.parseTaskForm(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	defer closeForm()

	task, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	form, closeForm, err := h.parseTaskForm(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	defer closeForm()

	task, err := h.service.Update(r.Context(), id, form)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Photo отдает защищенную фотографию по POST с паролем в форме.
func (h *TaskHandler) Photo(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	password := r.FormValue("photoPassword")

	content, contentType, err := h.service.FetchPhoto(r.Context(), filename, password)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	defer content.Close()

	respond.File(w, r, contentType, content)
}

func (h *TaskHandler) ValidatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FotoID    string `json:"fotoId"`
		FotoSenha string `json:"fotoSenha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := strconv.ParseInt(req.FotoID, 10, 64)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid fotoId")
		return
	}

	ok, err := h.service.ValidatePassword(r.Context(), id, req.FotoSenha)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	if !ok {
		respond.JSON(w, r, http.StatusUnauthorized, map[string]bool{"correct": false})
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]bool{"correct": true})
}

// parseTaskForm разбирает multipart-форму создания/обновления задачи.
// Возвращаемая функция закрывает файл фото, если он был.
func (h *TaskHandler) parseTaskForm(r *http.Request) (model.TaskForm, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return model.TaskForm{}, noop, fmt.Errorf("invalid form: %w", err)
	}

	form := model.TaskForm{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		PhotoPassword: r.FormValue("photoPassword"),
	}

	if vals, ok := r.Form["completed"]; ok && len(vals) > 0 && vals[0] != "" {
		b, err := strconv.ParseBool(vals[0])
		if err != nil {
			return model.TaskForm{}, noop, fmt.Errorf("invalid completed value %q", vals[0])
		}
		form.Completed = &b
	}

	file, header, err := r.FormFile("photo")
	switch {
	case err == nil:
		if header.Size == 0 { // пустой файл считаем не переданным
			file.Close()
			return form, noop, nil
		}
		form.Photo = &model.PhotoUpload{
			Filename: header.Filename,
			Data:     file,
		}
		return form, func() { file.Close() }, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return form, noop, nil
	default:
		return model.TaskForm{}, noop, fmt.Errorf("invalid photo part: %w", err)
	}
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	case errors.Is(err, service.ErrUnauthorized):
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
