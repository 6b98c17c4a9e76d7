package transport

import (
	"context"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/chromalabel/internal/domain/activity"
	"github.com/rpggio/chromalabel/internal/domain/palette"
	"github.com/rpggio/chromalabel/internal/domain/result"
	"github.com/rpggio/chromalabel/internal/domain/sequence"
	"github.com/rpggio/chromalabel/internal/domain/trial"
)

// SequenceService builds trial sequences.
type SequenceService interface {
	Build(ctx context.Context, participantID string) (*sequence.Session, error)
}

// TrialService loads trial content.
type TrialService interface {
	Get(ctx context.Context, req trial.Request) (*trial.Content, error)
}

// ResultLog persists labelling decisions.
type ResultLog interface {
	Ensure(participantID string) error
	Append(ctx context.Context, participantID string, row result.Row) error
}

// ImageUploader stores uploaded files in a category folder.
type ImageUploader interface {
	Save(category, filename string, r io.Reader) (string, error)
}

// ActivityService lists and records activity.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
	Record(ctx context.Context, entry *activity.ActivityEntry)
}

// Services groups the domain services exposed over HTTP.
type Services struct {
	Sequences SequenceService
	Trials    TrialService
	Results   ResultLog
	Uploads   ImageUploader
	Activity  ActivityService
}

// Config wires HTTP handlers.
type Config struct {
	Services           Services
	Palette            *palette.Palette
	Pages              *template.Template
	Logger             *slog.Logger
	DefaultParticipant string
	UploadRGB          string
	UploadSeg          string
	MaxUploadSize      int64
}

// Server wires HTTP handlers.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.DefaultParticipant == "" {
		cfg.DefaultParticipant = "anonymous"
	}
	if cfg.UploadRGB == "" {
		cfg.UploadRGB = "rgb"
	}
	if cfg.UploadSeg == "" {
		cfg.UploadSeg = "segmentation"
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 32 << 20
	}

	srv := &Server{cfg: cfg, logger: cfg.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", srv.handleIndex)
	r.Post("/setup", srv.handleSetup)
	r.Post("/get_trial", srv.handleGetTrial)
	r.Post("/save_result", srv.handleSaveResult)
	r.Get("/upload", srv.handleUploadPage)
	r.Post("/upload", srv.handleUpload)
	r.Get("/colors", srv.handleColors)
	r.Get("/activity", srv.handleActivity)
	r.Get("/health", srv.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
