package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
	"github.com/aldoetobex/legal-case-backend/pkg/sanitize"
)

var (
	ErrDisallowedType = errors.New("storage: file type not allowed")
	ErrOutsideRoot    = errors.New("storage: path outside uploads root")
	ErrNotFound       = errors.New("storage: file not found")
)

// allowedExt are the document types a case may carry.
var allowedExt = map[string]bool{"pdf": true, "docx": true, "jpg": true, "jpeg": true}

/*
Disk keeps uploads on the local filesystem under a single root.

Stored paths look like <root>/<ownerID>/<YYYYMMDDHHMMSS>_<name>, with a
counter before the name when that file already exists. When the
root is configured relative, stored paths are relative to the working
directory too, and Resolve joins them back against it.
*/
type Disk struct {
	root    string // as configured, used to build stored paths
	absRoot string // absolute and symlink-free
	base    string // working directory for relative paths
	now     func() time.Time
}

func NewDisk(root string) (*Disk, error) {
	base, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root = filepath.Clean(root)
	abs := root
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(base, abs)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &Disk{root: root, absRoot: abs, base: base, now: time.Now}, nil
}

// Allowed reports whether filename has an accepted extension.
func Allowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return allowedExt[ext]
}

// Save writes one uploaded file for ownerID and describes it as a case document.
func (d *Disk) Save(ownerID string, fh *multipart.FileHeader) (models.CaseDocument, error) {
	name := sanitize.SecureFilename(fh.Filename)
	if name == "" || !Allowed(name) {
		return models.CaseDocument{}, ErrDisallowedType
	}
	owner := sanitize.SecureFilename(ownerID)
	if owner == "" {
		return models.CaseDocument{}, fmt.Errorf("storage: invalid owner id %q", ownerID)
	}

	now := d.now().UTC()
	stamp := now.Format("20060102150405")

	dir := filepath.Join(d.absRoot, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.CaseDocument{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return models.CaseDocument{}, err
	}
	defer src.Close()

	dst, unique, err := createUnique(dir, stamp, name)
	if err != nil {
		return models.CaseDocument{}, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(filepath.Join(dir, unique))
		return models.CaseDocument{}, err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(filepath.Join(dir, unique))
		return models.CaseDocument{}, err
	}

	return models.CaseDocument{
		Filename:   name,
		Path:       filepath.ToSlash(filepath.Join(d.root, owner, unique)),
		UploadedAt: now,
	}, nil
}

const maxNameAttempts = 1000

// createUnique creates <stamp>_<name> in dir, or <stamp>_<n>_<name> when that
// is taken. An existing file is never opened for writing.
func createUnique(dir, stamp, name string) (*os.File, string, error) {
	for n := 0; n < maxNameAttempts; n++ {
		unique := stamp + "_" + name
		if n > 0 {
			unique = fmt.Sprintf("%s_%d_%s", stamp, n, name)
		}
		f, err := os.OpenFile(filepath.Join(dir, unique), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return f, unique, nil
	}
	return nil, "", fmt.Errorf("storage: no free name for %q", name)
}

// Resolve maps a stored or client-supplied path to a regular file inside the
// uploads root. Nothing is opened until the containment check has passed.
func (d *Disk) Resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" || strings.ContainsRune(p, 0) {
		return "", ErrNotFound
	}
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(d.base, p)
	}
	p = filepath.Clean(p)

	// lexical check first so nonexistent paths outside the root still get ErrOutsideRoot
	if !within(p, d.roots()...) {
		return "", ErrOutsideRoot
	}

	resolved, err := filepath.EvalSymlinks(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	// a symlink inside the root may still point out of it
	if !within(resolved, d.absRoot) {
		return "", ErrOutsideRoot
	}

	fi, err := os.Stat(resolved)
	if err != nil {
		return "", ErrNotFound
	}
	if !fi.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return resolved, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (d *Disk) Remove(p string) error {
	resolved, err := d.Resolve(p)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(resolved)
}

// within reports whether p is one of roots or below it. Uses filepath.Rel,
// so "/srv/uploads-old" is not inside "/srv/uploads".
func within(p string, roots ...string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// roots returns both spellings of the root; the working directory itself
// may sit behind a symlink.
func (d *Disk) roots() []string {
	lexical := d.root
	if !filepath.IsAbs(lexical) {
		lexical = filepath.Join(d.base, lexical)
	}
	if lexical == d.absRoot {
		return []string{d.absRoot}
	}
	return []string{d.absRoot, lexical}
}
