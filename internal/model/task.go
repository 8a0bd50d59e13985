package model

import (
	"io"
	"time"
)

type Task struct {
	ID int64 `json:"id"`
	Title string `json:"title"`
	Description string `json:"description"`
	Completed bool `json:"completed"`
	PhotoPath *string `json:"photoPath,omitempty"`
	PhotoPasswordHash *string `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskForm - разобранная multipart-форма. nil (или пустая строка для пароля)
// значит "поле не передано" - при обновлении такое поле не трогаем.
type TaskForm struct {
	Title string
	Description string
	Completed *bool
	Photo *PhotoUpload
	PhotoPassword string
}

type PhotoUpload struct {
	Filename string
	Data io.Reader
}
