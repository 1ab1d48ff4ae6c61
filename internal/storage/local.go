package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidID is returned by Open for ids that are not plain file names.
var ErrInvalidID = errors.New("invalid image id")

// LocalStore keeps images as PNG files in a directory.
type LocalStore struct {
	Dir string
	now func() time.Time
}

// NewLocalStore returns a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir, now: time.Now}
}

// Save writes data as <dir>/<yyyymmdd>-<uuid>.png and returns the file name,
// which doubles as the id accepted by Open.
func (s *LocalStore) Save(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating %s failed", s.Dir)
	}

	id := fmt.Sprintf("%s-%s.png", s.now().Format("20060102"), uuid.New().String())
	location := filepath.Join(s.Dir, id)

	if err := os.WriteFile(location, data, 0644); err != nil {
		return "", errors.Wrapf(err, "writing %s failed", location)
	}

	return id, nil
}

// Open returns the image stored under id. The caller closes the file.
func (s *LocalStore) Open(id string) (*os.File, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil, ErrInvalidID
	}
	return os.Open(filepath.Join(s.Dir, id))
}
