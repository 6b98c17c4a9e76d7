package manifest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/chromalabel/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_RebuildsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	base := t.TempDir()
	testutil.Touch(t, filepath.Join(base, "train", "a.jpg"))
	out := filepath.Join(t.TempDir(), "images.json")

	var mu sync.Mutex
	var totals []int
	w := NewWatcher(NewBuilder(Options{BaseFolder: base}, nil), out, 50*time.Millisecond, nil)
	w.OnRebuild = func(m *Manifest, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			totals = append(totals, m.Total())
		}
	}
	last := func() int {
		mu.Lock()
		defer mu.Unlock()
		if len(totals) == 0 {
			return -1
		}
		return totals[len(totals)-1]
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return last() == 1 }, 5*time.Second, 20*time.Millisecond)

	testutil.Touch(t, filepath.Join(base, "train", "b.jpg"))
	require.Eventually(t, func() bool { return last() == 2 }, 5*time.Second, 20*time.Millisecond)

	testutil.Touch(t, filepath.Join(base, "fun", "c.png"))
	require.Eventually(t, func() bool { return last() == 3 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
