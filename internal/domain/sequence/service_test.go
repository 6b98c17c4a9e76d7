package sequence_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/chromalabel/internal/config"
	"github.com/rpggio/chromalabel/internal/domain/activity"
	"github.com/rpggio/chromalabel/internal/domain/imagestore"
	"github.com/rpggio/chromalabel/internal/domain/sequence"
	"github.com/rpggio/chromalabel/internal/repository/mocks"
	"github.com/rpggio/chromalabel/internal/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func experiment() config.ExperimentConfig {
	return config.ExperimentConfig{
		WarmupCategory: "trial",
		Categories: []config.CategoryConfig{
			{Name: "trial", Cap: 2},
			{Name: "test", Cap: 4},
			{Name: "train", Cap: 6},
		},
		BalanceThreshold: 3,
	}
}

func seeded() sequence.Option {
	return sequence.WithRand(rand.New(rand.NewPCG(1, 2)))
}

func enumerate(t *testing.T, root string) map[string]bool {
	t.Helper()
	known := map[string]bool{}
	for _, category := range []string{"trial", "test", "train"} {
		entries, err := os.ReadDir(filepath.Join(root, category))
		require.NoError(t, err)
		for _, e := range entries {
			known[category+"/"+e.Name()] = true
		}
	}
	return known
}

func TestSequenceService_WarmupFirstAndCapped(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 5, "test": 10, "train": 20})
	known := enumerate(t, root)

	svc := sequence.NewService(imagestore.New(root), nil, nil, experiment(), nil, seeded())

	for i := 0; i < 20; i++ {
		sess, err := svc.Build(context.Background(), "p1")
		require.NoError(t, err)
		require.Equal(t, 12, sess.TotalTrials())
		require.NotEmpty(t, sess.SessionID)

		for j, id := range sess.Trials {
			require.True(t, known[id], id)
			if j < 2 {
				require.True(t, strings.HasPrefix(id, "trial/"), id)
			} else {
				require.False(t, strings.HasPrefix(id, "trial/"), id)
			}
		}

		seen := map[string]bool{}
		for _, id := range sess.Trials {
			require.False(t, seen[id], "duplicate %s", id)
			seen[id] = true
		}
	}
}

func TestSequenceService_FewerImagesThanCap(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 1, "test": 2, "train": 0})

	svc := sequence.NewService(imagestore.New(root), nil, nil, experiment(), nil, seeded())
	sess, err := svc.Build(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, 3, sess.TotalTrials())
	require.Equal(t, "trial/trial_0.png", sess.Trials[0])
	require.NotNil(t, sess.Trials)
}

func TestSequenceService_MixesNonWarmupCategories(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 2, "test": 4, "train": 6})

	svc := sequence.NewService(imagestore.New(root), nil, nil, experiment(), nil, seeded())

	// With every image selected, test trials must not always trail train trials
	// or vice versa across many draws.
	interleaved := false
	for i := 0; i < 50 && !interleaved; i++ {
		sess, err := svc.Build(context.Background(), "p1")
		require.NoError(t, err)
		block := sess.Trials[2:]
		firstTrain := -1
		lastTest := -1
		for j, id := range block {
			if strings.HasPrefix(id, "train/") && firstTrain < 0 {
				firstTrain = j
			}
			if strings.HasPrefix(id, "test/") {
				lastTest = j
			}
		}
		interleaved = firstTrain < lastTest
	}
	require.True(t, interleaved)
}

func TestSequenceService_MissingDirectory(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 2, "train": 3})

	recorder := &mocks.ActivityRecorder{}
	svc := sequence.NewService(imagestore.New(root), nil, recorder, experiment(), nil, seeded())

	sess, err := svc.Build(context.Background(), "p1")
	require.Nil(t, sess)
	require.ErrorIs(t, err, imagestore.ErrMissingDirectory)
	require.Contains(t, err.Error(), filepath.Join(root, "test"))
	recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestSequenceService_RecordsSessionStarted(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 2, "test": 1, "train": 1})

	recorder := &mocks.ActivityRecorder{}
	recorder.On("Record", mock.Anything, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeSessionStarted && e.ParticipantID == "p9" && e.SessionID != nil
	})).Return()

	svc := sequence.NewService(imagestore.New(root), nil, recorder, experiment(), nil, seeded())
	_, err := svc.Build(context.Background(), "p9")
	require.NoError(t, err)
	recorder.AssertExpectations(t)
}

func TestSequenceService_BalancedPrefersUnderSampled(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 0, "test": 0, "train": 8})

	counts := map[string]int{}
	for i := 0; i < 8; i++ {
		counts["train_"+string(rune('0'+i))+".png"] = 5
	}
	counts["train_2.png"] = 0
	counts["train_5.png"] = 1

	responses := &mocks.ResponseRepository{}
	responses.On("Counts", mock.Anything).Return(counts, nil)

	cfg := experiment()
	cfg.Categories[2] = config.CategoryConfig{Name: "train", Cap: 3, Policy: config.PolicyBalanced}

	svc := sequence.NewService(imagestore.New(root), responses, nil, cfg, nil, seeded())
	sess, err := svc.Build(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, sess.Trials, 3)
	require.Contains(t, sess.Trials, "train/train_2.png")
	require.Contains(t, sess.Trials, "train/train_5.png")
}

func TestSequenceService_BalancedFallsBackOnCountError(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 1, "test": 1, "train": 4})

	responses := &mocks.ResponseRepository{}
	responses.On("Counts", mock.Anything).Return(nil, errors.New("db closed"))

	cfg := experiment()
	cfg.Categories[2].Policy = config.PolicyBalanced

	svc := sequence.NewService(imagestore.New(root), responses, nil, cfg, nil, seeded())
	sess, err := svc.Build(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, 6, sess.TotalTrials())
}

func TestSequenceService_UniformSkipsCounts(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 1, "test": 1, "train": 1})

	responses := &mocks.ResponseRepository{}
	svc := sequence.NewService(imagestore.New(root), responses, nil, experiment(), nil, seeded())
	_, err := svc.Build(context.Background(), "p1")
	require.NoError(t, err)
	responses.AssertNotCalled(t, "Counts", mock.Anything)
}

func TestSequenceService_ScreeningAndCatchTrials(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 2, "test": 30, "train": 30, "catch": 5, "fun": 3})

	svc := sequence.NewService(imagestore.New(root), nil, nil, config.Default().Experiment, nil, seeded())
	sess, err := svc.Build(context.Background(), "p1")
	require.NoError(t, err)

	// 2 warm-up + 5 screening + 63 regular + a catch after regular trials 20, 40 and 60.
	require.Equal(t, 73, sess.TotalTrials())
	require.Equal(t, []int{2, 3, 4, 5, 6, 27, 48, 69}, sess.CatchPositions)

	for i := 0; i < 5; i++ {
		require.Equal(t, "catch/catch_"+string(rune('0'+i))+".png", sess.Trials[2+i])
	}
	require.Equal(t, "catch/catch_0.png", sess.Trials[27])
	require.Equal(t, "catch/catch_1.png", sess.Trials[48])
	require.Equal(t, "catch/catch_2.png", sess.Trials[69])

	catchSeen, fun := 0, 0
	for _, id := range sess.Trials {
		switch {
		case strings.HasPrefix(id, "catch/"):
			catchSeen++
		case strings.HasPrefix(id, "fun/"):
			fun++
		}
	}
	require.Equal(t, 8, catchSeen)
	require.Equal(t, 3, fun)
	require.NotEqual(t, "catch", strings.Split(sess.Trials[len(sess.Trials)-1], "/")[0])
}

func TestSequenceService_OptionalFoldersMayBeMissing(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 2, "test": 3, "train": 4})

	svc := sequence.NewService(imagestore.New(root), nil, nil, config.Default().Experiment, nil, seeded())
	sess, err := svc.Build(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, 9, sess.TotalTrials())
	require.Empty(t, sess.CatchPositions)
}

func TestSequenceService_UncappedCategoryDrawsAll(t *testing.T) {
	root := t.TempDir()
	testutil.CategoryTree(t, root, map[string]int{"trial": 0, "test": 0, "train": 0, "fun": 7})

	cfg := experiment()
	cfg.Categories = append(cfg.Categories, config.CategoryConfig{Name: "fun", Cap: config.NoCap})

	svc := sequence.NewService(imagestore.New(root), nil, nil, cfg, nil, seeded())
	sess, err := svc.Build(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, sess.Trials, 7)
}
