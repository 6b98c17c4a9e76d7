package imagestore_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/chromalabel/internal/domain/imagestore"
	"github.com/rpggio/chromalabel/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestStore_ListCategory(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.jpg", "a.png", "c.jpeg", "d.PNG", "notes.txt"} {
		testutil.Touch(t, filepath.Join(root, "train", name))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "train", "nested.png"), 0o755))

	store := imagestore.New(root)
	names, err := store.ListCategory("train")
	require.NoError(t, err)
	require.Equal(t, []string{"a.png", "b.jpg", "c.jpeg"}, names)
}

func TestStore_ListCategory_Missing(t *testing.T) {
	root := t.TempDir()
	store := imagestore.New(root)

	_, err := store.ListCategory("test")
	require.ErrorIs(t, err, imagestore.ErrMissingDirectory)

	var missing *imagestore.MissingDirectoryError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, filepath.Join(root, "test"), missing.Dir)
	require.Contains(t, err.Error(), "test")
}

func TestStore_Resolve(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, filepath.Join(root, "train", "x.jpg"))
	store := imagestore.New(root)

	path, err := store.Resolve("train/x.jpg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "train", "x.jpg"), path)

	for _, name := range []string{"", "train/missing.jpg", "train", "../outside.jpg", "/etc/passwd"} {
		_, err := store.Resolve(name)
		require.ErrorIs(t, err, imagestore.ErrImageNotFound, name)
	}
}

func TestStore_SaveAndOpen(t *testing.T) {
	root := t.TempDir()
	store := imagestore.New(root)

	id, err := store.Save("rgb", `C:\photos\cat.png`, strings.NewReader("pixels"))
	require.NoError(t, err)
	require.Equal(t, "rgb/cat.png", id)

	rc, err := store.Open(id)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "pixels", string(data))
}

func TestStore_SaveRejectsBadNames(t *testing.T) {
	store := imagestore.New(t.TempDir())

	_, err := store.Save("../rgb", "cat.png", strings.NewReader(""))
	require.ErrorIs(t, err, imagestore.ErrInvalidName)

	_, err = store.Save("rgb", "..", strings.NewReader(""))
	require.ErrorIs(t, err, imagestore.ErrInvalidName)
}

func TestSplitName(t *testing.T) {
	category, base := imagestore.SplitName("train/x.jpg")
	require.Equal(t, "train", category)
	require.Equal(t, "x.jpg", base)

	category, base = imagestore.SplitName("x.jpg")
	require.Equal(t, "", category)
	require.Equal(t, "x.jpg", base)
}

func TestHasImageExt(t *testing.T) {
	require.True(t, imagestore.HasImageExt("a.jpeg"))
	require.False(t, imagestore.HasImageExt("a.JPG"))
	require.False(t, imagestore.HasImageExt("a.gif"))
}
