package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/chromalabel/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestBuilder_PairsMasksAndCaps(t *testing.T) {
	base := t.TempDir()
	train := filepath.Join(base, "train")
	for _, name := range []string{
		"a.jpg", "b.png", "c.jpeg", "d.jpg", "e.jpg", "f.jpg", "g.jpg",
		"maska.png", "mask_b.jpg", "MASKz.jpg", "notes.txt",
	} {
		testutil.Touch(t, filepath.Join(train, name))
	}
	testutil.Touch(t, filepath.Join(base, "test", "only.png"))

	b := NewBuilder(Options{BaseFolder: base}, nil)
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, DefaultCategories, m.Categories)
	entries := m.Entries["train"]
	require.Len(t, entries, 5)
	require.Equal(t, "train/a.jpg", entries[0].Name)
	require.Equal(t, filepath.ToSlash(filepath.Join(train, "a.jpg")), entries[0].RGB)
	require.Equal(t, filepath.ToSlash(filepath.Join(train, "maska.png")), entries[0].Mask)
	require.Equal(t, filepath.ToSlash(filepath.Join(train, "mask_b.jpg")), entries[1].Mask)
	require.Empty(t, entries[2].Mask)
	require.Equal(t, "train/e.jpg", entries[4].Name)

	require.Len(t, m.Entries["test"], 1)
	require.Empty(t, m.Entries["trial"])
	require.NotNil(t, m.Entries["trial"])
	require.Equal(t, 6, m.Total())
}

func TestBuilder_MaskCandidateOrder(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "fun")
	for _, name := range []string{"x.png", "mask_x.jpg", "maskx.png"} {
		testutil.Touch(t, filepath.Join(dir, name))
	}

	b := NewBuilder(Options{BaseFolder: base, Categories: []string{"fun"}}, nil)
	m, err := b.Build(context.Background())
	require.NoError(t, err)
	// .jpg candidates are tried before .png ones.
	require.True(t, strings.HasSuffix(m.Entries["fun"][0].Mask, "mask_x.jpg"))
}

func TestBuilder_MissingBaseFolder(t *testing.T) {
	b := NewBuilder(Options{BaseFolder: filepath.Join(t.TempDir(), "nope")}, nil)
	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, ErrBaseFolderMissing)
}

func TestBuildAndWrite_OrderedJSONOverwrite(t *testing.T) {
	base := t.TempDir()
	testutil.Touch(t, filepath.Join(base, "train", "a.jpg"))
	out := filepath.Join(t.TempDir(), "images.json")
	require.NoError(t, os.WriteFile(out, []byte(`{"stale":[{"name":"old"}]}`), 0o644))

	b := NewBuilder(Options{BaseFolder: base}, nil)
	_, err := b.BuildAndWrite(context.Background(), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	require.NotContains(t, text, "stale")
	require.Less(t, strings.Index(text, `"trial"`), strings.Index(text, `"test"`))
	require.Less(t, strings.Index(text, `"test"`), strings.Index(text, `"train"`))
	require.Less(t, strings.Index(text, `"train"`), strings.Index(text, `"fun"`))
	require.Contains(t, text, "\n  \"trial\": []")

	var decoded map[string][]Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 4)
	require.Equal(t, "train/a.jpg", decoded["train"][0].Name)
	require.Empty(t, decoded["train"][0].Mask)
	require.NotContains(t, text, `"mask"`)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(out), tempPrefix+"*"))
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestBuilder_KeepsBaseFolderVerbatimAndSkipsDotfiles(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, name := range []string{"a.jpg", ".a.jpg", ".DS_Store.png", "mask_a.png", ".maska.jpg"} {
		testutil.Touch(t, filepath.Join("uploads", "train", name))
	}

	b := NewBuilder(Options{BaseFolder: "./uploads/", Categories: []string{"train"}}, nil)
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	entries := m.Entries["train"]
	require.Len(t, entries, 1)
	require.Equal(t, "train/a.jpg", entries[0].Name)
	require.Equal(t, "./uploads/train/a.jpg", entries[0].RGB)
	require.Equal(t, "./uploads/train/mask_a.png", entries[0].Mask)
}

func TestJoinRaw(t *testing.T) {
	require.Equal(t, "./static/uploads/train/x.jpg", joinRaw("./static/uploads", "train", "x.jpg"))
	require.Equal(t, "static/uploads/train/x.jpg", joinRaw("static/uploads/", "train", "x.jpg"))
}
