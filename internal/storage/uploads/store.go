// Package uploads owns the directory backing the public /uploads/ namespace.
// Files are named <uuid><ext> so concurrent writers never collide, and every
// URL-to-path resolution is canonicalized and checked against the root before
// anything touches the disk.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutelo/internal/domain"
)

// PublicPrefix is the URL namespace the static file server exposes.
const PublicPrefix = "/uploads/"

type Store struct {
	root string // absolute, symlink-resolved
}

// New creates the uploads directory if missing and canonicalizes its path so
// the traversal guard in Resolve compares like against like.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Root returns the canonicalized uploads directory.
func (s *Store) Root() string { return s.root }

// Save copies the content to a freshly named file and returns its public URL.
// The extension is whatever follows the last dot of originalName, empty when
// there is none. An existing file with the same name is overwritten.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := filepath.Ext(filepath.Base(originalName))
	name := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return PublicPrefix + name, nil
}

// Resolve maps a public URL ("/uploads/x.png", "uploads/x.png") to an
// absolute path and rejects anything that would land outside the root.
func (s *Store) Resolve(url string) (string, error) {
	name := strings.ReplaceAll(url, `\`, "/")
	name = strings.TrimPrefix(name, PublicPrefix)
	name = strings.TrimPrefix(name, "uploads/")

	// Join cleans ".." segments, which is exactly what lets an escape
	// attempt resolve to a path outside root; the prefix check below is
	// the actual guard.
	p := filepath.Join(s.root, filepath.FromSlash(name))
	if p == s.root || !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid image path %q", domain.ErrValidation, url)
	}
	return p, nil
}

// Remove deletes the file backing url. Missing files are fine; the operation
// is idempotent. An unsafe url is ErrValidation from Resolve.
func (s *Store) Remove(url string) error {
	p, err := s.Resolve(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

// FileInfo describes one stored upload, for the orphan sweeper.
type FileInfo struct {
	Name    string
	URL     string
	ModTime time.Time
}

// Files lists the regular files currently under the root.
func (s *Store) Files() ([]FileInfo, error) {
	ents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	out := make([]FileInfo, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue // raced with a concurrent delete
			}
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, FileInfo{
			Name:    e.Name(),
			URL:     PublicPrefix + e.Name(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}
