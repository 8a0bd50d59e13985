package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrorNotFound = errors.New("photo not found")
)

// PhotoStore хранит загруженные файлы в одной директории на диске.
// Все имена должны проходить через Sanitize до записи.
type PhotoStore struct {
	root string
}

func NewPhotoStore(root string) *PhotoStore {
	return &PhotoStore{root: root}
}

// Sanitize removes path separators and traversal segments from an
// uploaded filename, leaving only a bare file name.
func Sanitize(name string) string {
	clean := filepath.Base(filepath.Clean(name))
	clean = strings.ReplaceAll(clean, "/", "_")
	clean = strings.ReplaceAll(clean, "\\", "_")
	if clean == "." || clean == ".." || clean == "" {
		return "unnamed"
	}
	return clean
}

// URLPath - путь, по которому файл отдается наружу: /<dir>/<name>
func (s *PhotoStore) URLPath(name string) string {
	return "/" + filepath.Base(s.root) + "/" + name
}

// Resolve maps a filename to an absolute path inside the store root.
// Names that escape the root after cleaning are treated as absent.
func (s *PhotoStore) Resolve(name string) (string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, name)
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", ErrorNotFound
	}
	return path, nil
}

func (s *PhotoStore) Write(name string, data io.Reader) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path) // перезаписываем одноименный файл
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *PhotoStore) Open(name string) (*os.File, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrorNotFound
	}
	return f, err
}

type PhotoInfo struct {
	Name string
	ModTime time.Time
}

func (s *PhotoStore) List() ([]PhotoInfo, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	infos := make([]PhotoInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, PhotoInfo{Name: e.Name(), ModTime: fi.ModTime()})
	}
	return infos, nil
}

func (s *PhotoStore) Remove(name string) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return ErrorNotFound
	}
	return err
}
