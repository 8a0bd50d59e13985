package worker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-photo-api/internal/repo"
	"github.com/BuzzLyutic/task-photo-api/internal/storage"
)

// stubRepo отдает фиксированный список путей; остальные методы не нужны.
type stubRepo struct {
	repo.TaskRepository
	paths []string
}

func (s *stubRepo) PhotoPaths(ctx context.Context) ([]string, error) {
	return s.paths, nil
}

func TestJanitor_Sweep(t *testing.T) {
	dir := t.TempDir()
	photos := storage.NewPhotoStore(dir)

	require.NoError(t, photos.Write("kept.jpg", bytes.NewReader([]byte("kept"))))
	require.NoError(t, photos.Write("orphan.jpg", bytes.NewReader([]byte("orphan"))))
	require.NoError(t, photos.Write("fresh.jpg", bytes.NewReader([]byte("fresh"))))

	// Старим все, кроме fresh.jpg
	old := time.Now().Add(-48 * time.Hour)
	for _, name := range []string{"kept.jpg", "orphan.jpg"} {
		require.NoError(t, os.Chtimes(filepath.Join(dir, name), old, old))
	}

	taskRepo := &stubRepo{paths: []string{"/uploads/kept.jpg"}}
	janitor := NewJanitor(taskRepo, photos, zap.NewNop(), time.Minute, 24*time.Hour)

	require.NoError(t, janitor.Sweep(context.Background()))

	files, err := photos.List()
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"kept.jpg", "fresh.jpg"}, names,
		"referenced and young files survive, aged orphan is removed")
}

func TestJanitor_SweepEmptyStore(t *testing.T) {
	photos := storage.NewPhotoStore(filepath.Join(t.TempDir(), "never-created"))
	janitor := NewJanitor(&stubRepo{}, photos, zap.NewNop(), time.Minute, 0)

	require.NoError(t, janitor.Sweep(context.Background()))
}

func TestJanitor_StartStop(t *testing.T) {
	dir := t.TempDir()
	photos := storage.NewPhotoStore(dir)

	require.NoError(t, photos.Write("orphan.jpg", bytes.NewReader([]byte("x"))))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "orphan.jpg"), old, old))

	janitor := NewJanitor(&stubRepo{}, photos, zap.NewNop(), 10*time.Millisecond, time.Minute/2)

	janitor.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	removed := false
	for time.Now().Before(deadline) {
		if files, _ := photos.List(); len(files) == 0 {
			removed = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	janitor.Stop()

	assert.True(t, removed, "ticker loop should have swept the orphan")
}
