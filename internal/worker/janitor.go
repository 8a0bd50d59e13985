package worker

import (
    "context"
    "path"
    "sync"
    "time"

    "go.uber.org/zap"

    "github.com/BuzzLyutic/task-photo-api/internal/repo"
    "github.com/BuzzLyutic/task-photo-api/internal/storage"
)

// Janitor периодически убирает файлы-сироты из каталога фотографий:
// файл старше minAge, на который не ссылается ни одна задача, удаляется.
type Janitor struct {
    repo   repo.TaskRepository
    photos *storage.PhotoStore
    logger *zap.Logger
    interval time.Duration
    minAge   time.Duration
    wg     sync.WaitGroup
    stop   chan struct{}
}

func NewJanitor(taskRepo repo.TaskRepository, photos *storage.PhotoStore, logger *zap.Logger, interval, minAge time.Duration) *Janitor {
    return &Janitor{
        repo:   taskRepo,
        photos: photos,
        logger: logger,
        interval: interval,
        minAge:   minAge,
        stop:   make(chan struct{}),
    }
}

func (j *Janitor) Start(ctx context.Context) {
    j.logger.Info("Starting photo janitor", zap.Duration("interval", j.interval))

    j.wg.Add(1)
    go j.run(ctx)
}

func (j *Janitor) Stop() {
    j.logger.Info("Stopping photo janitor...")
    close(j.stop)
    j.wg.Wait()
    j.logger.Info("Photo janitor stopped")
}

func (j *Janitor) run(ctx context.Context) {
    defer j.wg.Done()

    ticker := time.NewTicker(j.interval)
    defer ticker.Stop()

    for {
        select {
        case <-j.stop:
            return
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := j.Sweep(ctx); err != nil {
                j.logger.Error("janitor sweep failed", zap.Error(err))
            }
        }
    }
}

// Sweep делает один проход уборки.
func (j *Janitor) Sweep(ctx context.Context) error {
    paths, err := j.repo.PhotoPaths(ctx)
    if err != nil {
        return err
    }

    referenced := make(map[string]bool, len(paths))
    for _, p := range paths {
        referenced[path.Base(p)] = true
    }

    files, err := j.photos.List()
    if err != nil {
        return err
    }

    for _, f := range files {
        if referenced[f.Name] {
            continue
        }
        if time.Since(f.ModTime) < j.minAge {
            continue // свежий файл - возможно, задача еще не сохранилась
        }
        if err := j.photos.Remove(f.Name); err != nil {
            j.logger.Error("failed to remove orphan photo", zap.String("file", f.Name), zap.Error(err))
            continue
        }
        j.logger.Info("Removed orphan photo", zap.String("file", f.Name))
    }

    return nil
}
