package service

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/BuzzLyutic/task-photo-api/internal/auth"
	"github.com/BuzzLyutic/task-photo-api/internal/model"
	"github.com/BuzzLyutic/task-photo-api/internal/repo"
	"github.com/BuzzLyutic/task-photo-api/internal/storage"
)

var (
	ErrValidation = errors.New("validation error")
	ErrUnauthorized = errors.New("wrong photo password")
)

type TaskService struct {
	repo repo.TaskRepository
	photos *storage.PhotoStore
	hasher *auth.PasswordHasher
}

func NewTaskService(repo repo.TaskRepository, photos *storage.PhotoStore, hasher *auth.PasswordHasher) *TaskService {
	return &TaskService{repo: repo, photos: photos, hasher: hasher}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

func (s *TaskService) Create(ctx context.Context, form model.TaskForm) (model.Task, error) {
	if err := s.validate(form); err != nil {
		return model.Task{}, err
	}

	t := model.Task{
		Title: form.Title,
		Description: form.Description,
	}
	if form.Completed != nil {
		t.Completed = *form.Completed
	}

	// Фото пишем до сохранения записи: при ошибке записи файла
	// в БД ничего не попадает.
	if err := s.applyPhoto(&t, form); err != nil {
		return model.Task{}, err
	}
	if err := s.applyPassword(&t, form); err != nil {
		return model.Task{}, err
	}

	return s.repo.Create(ctx, t)
}

func (s *TaskService) Update(ctx context.Context, id int64, form model.TaskForm) (model.Task, error) {
	if err := s.validate(form); err != nil {
		return model.Task{}, err
	}

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	// title/description перезаписываются всегда, остальные поля -
	// только если переданы.
	t.Title = form.Title
	t.Description = form.Description
	if form.Completed != nil {
		t.Completed = *form.Completed
	}
	if err := s.applyPhoto(&t, form); err != nil {
		return model.Task{}, err
	}
	if err := s.applyPassword(&t, form); err != nil {
		return model.Task{}, err
	}

	return s.repo.Update(ctx, t)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return repo.ErrorNotFound
	}
	// Файл фото при удалении задачи не трогаем.
	return s.repo.Delete(ctx, id)
}

// FetchPhoto отдает содержимое файла, если пароль подходит. Файл без
// записи в БД (сирота) или без пароля отдается без проверки.
func (s *TaskService) FetchPhoto(ctx context.Context, filename, password string) (io.ReadCloser, string, error) {
	name := storage.Sanitize(filename)

	t, err := s.repo.GetByPhotoPath(ctx, s.photos.URLPath(name))
	switch {
	case err == nil:
		if t.PhotoPasswordHash != nil && !s.hasher.Verify(password, *t.PhotoPasswordHash) {
			return nil, "", ErrUnauthorized
		}
	case errors.Is(err, repo.ErrorNotFound):
		// нет записи - файл отдаем как есть
	default:
		return nil, "", err
	}

	f, err := s.photos.Open(name)
	if err != nil {
		return nil, "", err
	}
	return f, detectContentType(name, f), nil
}

func (s *TaskService) ValidatePassword(ctx context.Context, id int64, password string) (bool, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if t.PhotoPasswordHash == nil {
		return false, nil
	}
	return s.hasher.Verify(password, *t.PhotoPasswordHash), nil
}

func (s *TaskService) applyPhoto(t *model.Task, form model.TaskForm) error {
	if form.Photo == nil {
		return nil
	}
	name := storage.Sanitize(form.Photo.Filename)
	if err := s.photos.Write(name, form.Photo.Data); err != nil {
		return err
	}
	path := s.photos.URLPath(name)
	t.PhotoPath = &path
	return nil
}

func (s *TaskService) applyPassword(t *model.Task, form model.TaskForm) error {
	if form.PhotoPassword == "" {
		return nil
	}
	hash, err := s.hasher.Hash(form.PhotoPassword)
	if err != nil {
		return err
	}
	t.PhotoPasswordHash = &hash
	return nil
}

func (s *TaskService) validate(form model.TaskForm) error {
	if strings.TrimSpace(form.Title) == "" {
		return ErrValidation
	}
	if strings.TrimSpace(form.Description) == "" {
		return ErrValidation
	}
	return nil
}

func detectContentType(name string, f *os.File) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	f.Seek(0, io.SeekStart)
	if n == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(buf[:n])
}
