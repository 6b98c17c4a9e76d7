package result

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rpggio/chromalabel/internal/domain/activity"
	"github.com/rpggio/chromalabel/internal/domain/imagestore"
)

// Log appends labelling decisions to one CSV file per participant.
// Files are created with a header once and never rewritten.
type Log struct {
	dir      string
	tally    ResponseTally
	activity ActivityRecorder
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLog creates a result log writing into dir. tally and recorder may be nil.
func NewLog(dir string, tally ResponseTally, recorder ActivityRecorder, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Log{
		dir:      dir,
		tally:    tally,
		activity: recorder,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Path returns the result file for a participant.
func (l *Log) Path(participantID string) (string, error) {
	if err := validateParticipant(participantID); err != nil {
		return "", err
	}
	return filepath.Join(l.dir, participantID+"_results.csv"), nil
}

// Ensure creates the participant file with its header if it does not exist.
// An existing file is left untouched.
func (l *Log) Ensure(participantID string) error {
	path, err := l.Path(participantID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating results dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeRecord(f, Header); err != nil {
		f.Close()
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	l.logger.Info("result file created", "participant_id", participantID, "path", path)
	return nil
}

// Append writes one row for the participant. Color names are stored verbatim.
func (l *Log) Append(ctx context.Context, participantID string, row Row) error {
	if strings.TrimSpace(row.ImageName) == "" {
		return fmt.Errorf("%w: image_name required", ErrInvalidInput)
	}
	path, err := l.Path(participantID)
	if err != nil {
		return err
	}

	folder, base := imagestore.SplitName(row.ImageName)
	if row.Folder != "" {
		folder = row.Folder
	}
	record := []string{
		base,
		folder,
		strconv.Itoa(row.SegmentationLabel),
		strings.Join(row.SelectedColors, ColorSeparator),
	}

	lock := l.lockFor(participantID)
	lock.Lock()
	err = l.appendLocked(participantID, path, record)
	lock.Unlock()
	if err != nil {
		return err
	}

	l.mirror(ctx, participantID, row, base)
	return nil
}

func (l *Log) appendLocked(participantID, path string, record []string) error {
	if err := l.Ensure(participantID); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if err := writeRecord(f, record); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// mirror updates the response tally and activity log. Failures are logged only.
func (l *Log) mirror(ctx context.Context, participantID string, row Row, base string) {
	if l.tally != nil {
		if err := l.tally.Increment(ctx, base); err != nil {
			l.logger.Warn("response tally not updated", "image_name", base, "error", err)
		}
	}
	if l.activity != nil {
		imageName := row.ImageName
		l.activity.Record(ctx, &activity.ActivityEntry{
			ParticipantID: participantID,
			ImageName:     &imageName,
			ActivityType:  activity.TypeResultSaved,
			Summary:       fmt.Sprintf("%d colors for %s", len(row.SelectedColors), base),
			Details:       activity.Details(row),
		})
	}
}

func (l *Log) lockFor(participantID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[participantID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[participantID] = lock
	}
	return lock
}

func writeRecord(f *os.File, record []string) error {
	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func validateParticipant(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || !filepath.IsLocal(id) {
		return fmt.Errorf("%w: %q", ErrInvalidParticipant, id)
	}
	return nil
}
