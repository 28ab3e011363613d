package uploads_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tutelo/internal/domain"
	"tutelo/internal/storage/uploads"
)

func TestSave_GeneratesUniqueNamesKeepingExtension(t *testing.T) {
	s, err := uploads.New(t.TempDir())
	require.NoError(t, err)

	u1, err := s.Save("photo.png", strings.NewReader("one"))
	require.NoError(t, err)
	u2, err := s.Save("photo.png", strings.NewReader("two"))
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(u1, uploads.PublicPrefix))
	require.True(t, strings.HasSuffix(u1, ".png"))
	require.NotEqual(t, u1, u2)

	p, err := s.Resolve(u1)
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "one", string(b))
}

func TestSave_NoExtension(t *testing.T) {
	s, err := uploads.New(t.TempDir())
	require.NoError(t, err)

	u, err := s.Save("README", strings.NewReader("x"))
	require.NoError(t, err)
	require.NotContains(t, filepath.Base(u), ".")
}

func TestResolve_AcceptsBothPrefixForms(t *testing.T) {
	s, err := uploads.New(t.TempDir())
	require.NoError(t, err)

	a, err := s.Resolve("/uploads/x.png")
	require.NoError(t, err)
	b, err := s.Resolve("uploads/x.png")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, filepath.Join(s.Root(), "x.png"), a)
}

func TestResolve_RejectsTraversal(t *testing.T) {
	s, err := uploads.New(t.TempDir())
	require.NoError(t, err)

	for _, payload := range []string{
		"/uploads/../../etc/passwd",
		`\uploads\..\..\etc\passwd`,
		"/uploads/",
		"/uploads/.",
		"../secret",
	} {
		_, err := s.Resolve(payload)
		require.ErrorIs(t, err, domain.ErrValidation, "payload %q", payload)
	}
}

func TestResolve_EncodedDotsAreLiteralFilenames(t *testing.T) {
	// Percent sequences that survive to this layer are plain bytes of a
	// filename, not separators, so they stay inside the root.
	s, err := uploads.New(t.TempDir())
	require.NoError(t, err)
	p, err := s.Resolve("/uploads/a%2e%2eb.png")
	if err == nil {
		require.True(t, strings.HasPrefix(p, s.Root()))
	}
}

func TestRemove_Idempotent(t *testing.T) {
	s, err := uploads.New(t.TempDir())
	require.NoError(t, err)

	u, err := s.Save("a.png", strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(u))
	require.NoError(t, s.Remove(u)) // already gone

	p, err := s.Resolve(u)
	require.NoError(t, err)
	_, statErr := os.Stat(p)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestFiles_ListsRegularFilesOnly(t *testing.T) {
	dir := t.TempDir()
	s, err := uploads.New(dir)
	require.NoError(t, err)

	_, err = s.Save("a.png", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.True(t, strings.HasPrefix(files[0].URL, uploads.PublicPrefix))
	require.False(t, files[0].ModTime.IsZero())
}
