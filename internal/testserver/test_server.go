package testserver

import (
	"fmt"
	"math/rand/v2"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/chromalabel/internal/config"
	"github.com/rpggio/chromalabel/internal/domain/activity"
	"github.com/rpggio/chromalabel/internal/domain/imagestore"
	"github.com/rpggio/chromalabel/internal/domain/palette"
	"github.com/rpggio/chromalabel/internal/domain/result"
	"github.com/rpggio/chromalabel/internal/domain/sequence"
	"github.com/rpggio/chromalabel/internal/domain/trial"
	"github.com/rpggio/chromalabel/internal/sqlite"
	"github.com/rpggio/chromalabel/internal/transport"
	"github.com/rpggio/chromalabel/web"
	"github.com/stretchr/testify/require"
)

// TestServer is a fully wired server over temporary directories.
type TestServer struct {
	Server     *httptest.Server
	DB         *sqlite.DB
	Config     config.Config
	ImageRoot  string
	ResultsDir string
	Activity   *activity.Service
}

// New starts a server with the default configuration. mutate may adjust it first.
func New(t *testing.T, mutate func(*config.Config)) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.ImageRoot = filepath.Join(t.TempDir(), "images")
	cfg.Storage.ResultsDir = filepath.Join(t.TempDir(), "results")
	if mutate != nil {
		mutate(&cfg)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activityRepo := sqlite.NewActivityRepository(db)
	responseRepo := sqlite.NewResponseRepository(db)

	pal, err := palette.New(cfg.Palette)
	require.NoError(t, err)
	pages, err := web.Templates()
	require.NoError(t, err)

	store := imagestore.New(cfg.Storage.ImageRoot)
	activitySvc := activity.NewService(activityRepo, nil)
	sequenceSvc := sequence.NewService(store, responseRepo, activitySvc, cfg.Experiment, nil,
		sequence.WithRand(rand.New(rand.NewPCG(1, 2))))
	trialSvc := trial.NewService(store, activitySvc, nil)
	results := result.NewLog(cfg.Storage.ResultsDir, responseRepo, activitySvc, nil)

	handler := transport.NewServer(transport.Config{
		Services: transport.Services{
			Sequences: sequenceSvc,
			Trials:    trialSvc,
			Results:   results,
			Uploads:   store,
			Activity:  activitySvc,
		},
		Palette:            pal,
		Pages:              pages,
		DefaultParticipant: cfg.Experiment.DefaultParticipant,
		UploadRGB:          cfg.Storage.UploadRGB,
		UploadSeg:          cfg.Storage.UploadSeg,
		MaxUploadSize:      cfg.Storage.MaxUploadSize,
	})
	server := httptest.NewServer(handler)

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:     server,
		DB:         db,
		Config:     cfg,
		ImageRoot:  cfg.Storage.ImageRoot,
		ResultsDir: cfg.Storage.ResultsDir,
		Activity:   activitySvc,
	}
}

// URL joins path onto the server base URL.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}
