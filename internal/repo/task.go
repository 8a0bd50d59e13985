package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-photo-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
)

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, completed, photo_path, photo_password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, description, completed, photo_path, photo_password_hash, created_at, updated_at
	`, t.Title, t.Description, t.Completed, t.PhotoPath, t.PhotoPasswordHash).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.PhotoPath, &t.PhotoPasswordHash, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, description, completed, photo_path, photo_password_hash, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.PhotoPath, &t.PhotoPasswordHash, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

// GetByPhotoPath возвращает не более одной задачи - уникальность photo_path
// на уровне БД не гарантируется, берем первую.
func (r *TaskRepo) GetByPhotoPath(ctx context.Context, path string) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, description, completed, photo_path, photo_password_hash, created_at, updated_at
		FROM tasks
		WHERE photo_path = $1
		ORDER BY id
		LIMIT 1
	`, path).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.PhotoPath, &t.PhotoPasswordHash, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, completed, photo_path, photo_password_hash, created_at, updated_at
		FROM tasks
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.PhotoPath, &t.PhotoPasswordHash, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, completed = $4, photo_path = $5, photo_password_hash = $6, updated_at = now()
		WHERE id = $1
		RETURNING id, title, description, completed, photo_path, photo_password_hash, created_at, updated_at
	`, t.ID, t.Title, t.Description, t.Completed, t.PhotoPath, t.PhotoPasswordHash).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.PhotoPath, &t.PhotoPasswordHash, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func (r *TaskRepo) PhotoPaths(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT photo_path FROM tasks WHERE photo_path IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
