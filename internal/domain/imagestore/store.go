package imagestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Extensions lists the suffixes treated as images. Matching is case-sensitive.
var Extensions = []string{".png", ".jpg", ".jpeg"}

// Store is an image root partitioned into category folders.
type Store struct {
	root string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the image root directory.
func (s *Store) Root() string {
	return s.root
}

// HasImageExt reports whether name carries one of the image extensions.
func HasImageExt(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// SplitName splits "category/base.jpg" into its category and base name.
// Names without a category prefix return an empty category.
func SplitName(imageName string) (category, base string) {
	imageName = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(imageName)), "/")
	dir, base := path.Split(imageName)
	return strings.TrimSuffix(dir, "/"), base
}

// ListCategory returns the image file names in a category folder in directory order.
func (s *Store) ListCategory(category string) ([]string, error) {
	dir := filepath.Join(s.root, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingDirectoryError{Dir: dir}
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !HasImageExt(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Resolve maps an identifier to a path under the root. The file must exist.
func (s *Store) Resolve(imageName string) (string, error) {
	rel := filepath.FromSlash(imageName)
	if imageName == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrImageNotFound, imageName)
	}
	full := filepath.Join(s.root, rel)
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrImageNotFound, imageName)
		}
		return "", fmt.Errorf("stat %s: %w", full, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrImageNotFound, imageName)
	}
	return full, nil
}

// Open resolves and opens an image for reading.
func (s *Store) Open(imageName string) (io.ReadCloser, error) {
	full, err := s.Resolve(imageName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrImageNotFound, imageName)
		}
		return nil, fmt.Errorf("opening %s: %w", full, err)
	}
	return f, nil
}

// Save writes an uploaded file into a category folder, creating it if needed.
// Only the base name of filename is kept. An existing file is replaced.
func (s *Store) Save(category, filename string, r io.Reader) (string, error) {
	if category == "" || !filepath.IsLocal(category) {
		return "", fmt.Errorf("%w: category %q", ErrInvalidName, category)
	}
	base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(filename, `\`, "/")))
	if base == "." || base == string(filepath.Separator) || base == "" || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	dst := filepath.Join(dir, base)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", dst, err)
	}
	return path.Join(filepath.ToSlash(category), base), nil
}
