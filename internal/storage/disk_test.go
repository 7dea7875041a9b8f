package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real *multipart.FileHeader the way a request would carry it.
func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("documents", name)
	require.NoError(t, err)
	_, _ = part.Write([]byte(content))
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["documents"][0]
}

func newDisk(t *testing.T) *Disk {
	t.Helper()
	d, err := NewDisk(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	d.now = func() time.Time { return time.Date(2025, 3, 1, 9, 5, 7, 0, time.UTC) }
	return d
}

func TestSave_NamesAndLayout(t *testing.T) {
	d := newDisk(t)
	owner := uuid.NewString()

	doc, err := d.Save(owner, fileHeader(t, "My Lease (final).PDF", "%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "My_Lease_final.PDF", doc.Filename)
	assert.True(t, strings.HasSuffix(doc.Path, owner+"/20250301090507_My_Lease_final.PDF"), doc.Path)

	resolved, err := d.Resolve(doc.Path)
	require.NoError(t, err)
	b, err := os.ReadFile(resolved)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(b))
}

func TestSave_SameNameSameSecondKeepsBothFiles(t *testing.T) {
	d := newDisk(t)
	owner := uuid.NewString()

	first, err := d.Save(owner, fileHeader(t, "lease.pdf", "case-A"))
	require.NoError(t, err)
	second, err := d.Save(owner, fileHeader(t, "lease.pdf", "case-B"))
	require.NoError(t, err)

	require.NotEqual(t, first.Path, second.Path)
	assert.Equal(t, "lease.pdf", second.Filename)
	assert.True(t, strings.HasSuffix(second.Path, owner+"/20250301090507_1_lease.pdf"), second.Path)

	read := func(p string) string {
		resolved, err := d.Resolve(p)
		require.NoError(t, err)
		b, err := os.ReadFile(resolved)
		require.NoError(t, err)
		return string(b)
	}
	assert.Equal(t, "case-A", read(first.Path))
	assert.Equal(t, "case-B", read(second.Path))

	// cleaning up the second upload leaves the first one alone
	require.NoError(t, d.Remove(second.Path))
	assert.Equal(t, "case-A", read(first.Path))
}

func TestSave_RejectsDisallowedTypes(t *testing.T) {
	d := newDisk(t)
	for _, name := range []string{"payload.exe", "notes.txt", "noext", "...pdf."} {
		_, err := d.Save(uuid.NewString(), fileHeader(t, name, "x"))
		assert.ErrorIs(t, err, ErrDisallowedType, name)
	}
}

func TestSave_TraversalInFilenameStaysInside(t *testing.T) {
	d := newDisk(t)
	doc, err := d.Save(uuid.NewString(), fileHeader(t, "../../../evil.pdf", "x"))
	require.NoError(t, err)
	assert.Equal(t, "evil.pdf", doc.Filename)
	_, err = d.Resolve(doc.Path)
	assert.NoError(t, err)
}

func TestResolve_RejectsEscapes(t *testing.T) {
	d := newDisk(t)

	outside := filepath.Join(filepath.Dir(d.absRoot), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("top secret"), 0o600))

	sibling := d.absRoot + "-old"
	require.NoError(t, os.MkdirAll(sibling, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sibling, "a.pdf"), []byte("x"), 0o600))

	link := filepath.Join(d.absRoot, "link.pdf")
	require.NoError(t, os.Symlink(outside, link))

	cases := []string{
		"../../etc/passwd",
		"/etc/passwd",
		filepath.Join(d.absRoot, "..", "secret.txt"),
		filepath.Join(d.absRoot, "a", "..", "..", "secret.txt"),
		filepath.Join(sibling, "a.pdf"),
		link,
	}
	for _, p := range cases {
		_, err := d.Resolve(p)
		assert.ErrorIs(t, err, ErrOutsideRoot, p)
	}
}

func TestResolve_NotFound(t *testing.T) {
	d := newDisk(t)
	_, err := d.Resolve(filepath.Join(d.absRoot, "nobody", "missing.pdf"))
	assert.ErrorIs(t, err, ErrNotFound)

	// the root itself is not a file
	_, err = d.Resolve(d.absRoot)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelativeRoot_StoredPathsResolveFromWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	d, err := NewDisk("uploads")
	require.NoError(t, err)

	owner := uuid.NewString()
	doc, err := d.Save(owner, fileHeader(t, "id.jpg", "jpeg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Path, "uploads/"+owner+"/"), doc.Path)

	_, err = d.Resolve(doc.Path)
	assert.NoError(t, err)

	_, err = d.Resolve("uploads/../../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestRemove(t *testing.T) {
	d := newDisk(t)
	doc, err := d.Save(uuid.NewString(), fileHeader(t, "a.docx", "x"))
	require.NoError(t, err)

	require.NoError(t, d.Remove(doc.Path))
	_, err = d.Resolve(doc.Path)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, d.Remove(doc.Path), "second remove is a no-op")
}
