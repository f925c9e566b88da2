// Package photos keeps check-in proof photos on local disk. Stored objects
// are addressed by a slash-separated reference ("uploads/<name>") that is
// saved with the session and served by the static host.
package photos

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("photo exceeds the upload limit")
	ErrBadRef   = errors.New("photo reference is outside the store")
)

// sniffLen is how many bytes http.DetectContentType looks at.
const sniffLen = 512

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

type Store struct {
	dir      string
	prefix   string
	maxBytes int64
	now      func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now in object names, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates dir if needed. References returned by Save start with the
// base name of dir.
func NewStore(dir string, maxBytes int64, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	s := &Store{
		dir:      dir,
		prefix:   filepath.Base(filepath.Clean(dir)),
		maxBytes: maxBytes,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save writes r as a new object for userID and returns its reference.
// The name is "<userID>-<unix ms>-<uuid><ext>". Content must sniff as an
// image; originalName only contributes its extension.
func (s *Store) Save(userID int64, originalName string, r io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read photo")
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	name := fmt.Sprintf("%d-%d-%s%s", userID, s.now().UnixMilli(), uuid.NewString(), extension(originalName, contentType))
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create photo")
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes+1)
	}
	written, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", errors.Wrap(err, "write photo")
	}

	return path.Join(s.prefix, name), nil
}

// Remove deletes the object behind ref. A missing object is not an error.
func (s *Store) Remove(ref string) error {
	full, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove photo")
	}
	return nil
}

func (s *Store) resolve(ref string) (string, error) {
	dir, name := path.Split(ref)
	if path.Clean(dir) != s.prefix || name == "" || name != filepath.Base(name) {
		return "", ErrBadRef
	}
	return filepath.Join(s.dir, name), nil
}

func extension(originalName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
		return ext
	}
	return extByType[contentType]
}
