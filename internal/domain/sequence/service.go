package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/chromalabel/internal/config"
	"github.com/rpggio/chromalabel/internal/domain/activity"
	"github.com/rpggio/chromalabel/internal/domain/imagestore"
)

// Service builds per-participant trial sequences.
type Service struct {
	images     ImageLister
	responses  ResponseCounter
	activity   ActivityRecorder
	warmup     string
	categories []config.CategoryConfig
	catch      config.CatchConfig
	threshold  int
	logger     *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithRand replaces the clock-seeded random source, e.g. with a fixed seed in tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.rng = r
	}
}

// NewService creates a new sequence service. responses and recorder may be nil.
func NewService(
	images ImageLister,
	responses ResponseCounter,
	recorder ActivityRecorder,
	cfg config.ExperimentConfig,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	seed := uint64(time.Now().UnixNano())
	s := &Service{
		images:     images,
		responses:  responses,
		activity:   recorder,
		warmup:     cfg.WarmupCategory,
		categories: cfg.Categories,
		catch:      cfg.Catch,
		threshold:  cfg.BalanceThreshold,
		logger:     logger,
		rng:        rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build draws a new trial list: warm-up trials, then screening catch
// trials, then every other category interleaved at random with a catch
// trial after each catch interval. A missing category folder fails the
// whole call unless the category is optional.
func (s *Service) Build(ctx context.Context, participantID string) (*Session, error) {
	listed := make([][]string, len(s.categories))
	for i, cat := range s.categories {
		names, err := s.images.ListCategory(cat.Name)
		if err != nil {
			if cat.Optional && errors.Is(err, imagestore.ErrMissingDirectory) {
				s.logger.Debug("optional category folder missing", "category", cat.Name)
				continue
			}
			return nil, fmt.Errorf("listing category %s: %w", cat.Name, err)
		}
		listed[i] = names
	}
	catchSet, err := s.listCatch()
	if err != nil {
		return nil, err
	}

	counts := s.loadCounts(ctx)

	s.mu.Lock()
	var warm, rest []string
	for i, cat := range s.categories {
		var picked []string
		if cat.Policy == config.PolicyBalanced && counts != nil {
			picked = pickBalanced(s.rng, listed[i], counts, s.threshold, cat.Cap)
		} else {
			picked = pickUniform(s.rng, listed[i], cat.Cap)
		}
		for j, name := range picked {
			picked[j] = path.Join(cat.Name, name)
		}
		if cat.Name == s.warmup {
			warm = append(warm, picked...)
		} else {
			rest = append(rest, picked...)
		}
	}
	s.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	s.mu.Unlock()

	screening := catchSet[:min(s.catch.Screening, len(catchSet))]

	trials := make([]string, 0, len(warm)+len(screening)+len(rest)+catchCount(len(rest), s.catch.Interval, len(catchSet)))
	trials = append(trials, warm...)
	var catchPositions []int
	for _, id := range screening {
		catchPositions = append(catchPositions, len(trials))
		trials = append(trials, id)
	}
	trials, catchPositions = interleaveCatch(trials, catchPositions, rest, catchSet, s.catch.Interval)

	sess := &Session{
		ParticipantID:  participantID,
		SessionID:      uuid.NewString(),
		Trials:         trials,
		CatchPositions: catchPositions,
	}

	s.logger.Info("session built", "participant_id", participantID, "session_id", sess.SessionID,
		"trials", sess.TotalTrials(), "warmup", len(warm), "catch", len(catchPositions))
	if s.activity != nil {
		s.activity.Record(ctx, &activity.ActivityEntry{
			ParticipantID: participantID,
			SessionID:     &sess.SessionID,
			ActivityType:  activity.TypeSessionStarted,
			Summary:       fmt.Sprintf("session with %d trials", sess.TotalTrials()),
			Details: activity.Details(map[string]int{
				"total_trials": sess.TotalTrials(),
				"warmup":       len(warm),
				"catch":        len(catchPositions),
			}),
		})
	}
	return sess, nil
}

// listCatch returns the catch identifiers in folder order. A missing catch
// folder disables catch trials.
func (s *Service) listCatch() ([]string, error) {
	if s.catch.Category == "" {
		return nil, nil
	}
	names, err := s.images.ListCategory(s.catch.Category)
	if err != nil {
		if errors.Is(err, imagestore.ErrMissingDirectory) {
			s.logger.Debug("catch folder missing, no catch trials", "category", s.catch.Category)
			return nil, nil
		}
		return nil, fmt.Errorf("listing catch category %s: %w", s.catch.Category, err)
	}
	for i, name := range names {
		names[i] = path.Join(s.catch.Category, name)
	}
	return names, nil
}

// loadCounts fetches response tallies when a balanced category needs them.
// Failures fall back to uniform selection.
func (s *Service) loadCounts(ctx context.Context) map[string]int {
	if s.responses == nil {
		return nil
	}
	needed := false
	for _, cat := range s.categories {
		if cat.Policy == config.PolicyBalanced {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}
	counts, err := s.responses.Counts(ctx)
	if err != nil {
		s.logger.Warn("response counts unavailable, using uniform selection", "error", err)
		return nil
	}
	return counts
}
