package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrBaseFolderMissing indicates the image root does not exist.
var ErrBaseFolderMissing = errors.New("base folder does not exist")

// Defaults match the experiment's static site layout.
var (
	DefaultCategories = []string{"trial", "test", "train", "fun"}
	DefaultExtensions = []string{".jpg", ".jpeg", ".png"}
)

const (
	DefaultLimit      = 5
	DefaultMaskPrefix = "mask"

	tempPrefix = ".manifest-"
)

// Options configures a Builder. Zero values take the defaults.
type Options struct {
	BaseFolder string
	Categories []string
	Extensions []string
	Limit      int
	MaskPrefix string
}

// Builder scans category folders for image/mask pairs.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// NewBuilder creates a builder, filling unset options with defaults.
func NewBuilder(opts Options, logger *slog.Logger) *Builder {
	if len(opts.Categories) == 0 {
		opts.Categories = DefaultCategories
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.MaskPrefix == "" {
		opts.MaskPrefix = DefaultMaskPrefix
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{opts: opts, logger: logger}
}

// Options returns the effective options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build scans every category. A missing category folder yields an empty
// list and a warning; a missing base folder fails.
func (b *Builder) Build(ctx context.Context) (*Manifest, error) {
	info, err := os.Stat(b.opts.BaseFolder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrBaseFolderMissing, b.opts.BaseFolder)
	}

	lists := make([][]Entry, len(b.opts.Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range b.opts.Categories {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries, err := b.scanCategory(category)
			if err != nil {
				return err
			}
			lists[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &Manifest{
		Categories: append([]string(nil), b.opts.Categories...),
		Entries:    make(map[string][]Entry, len(b.opts.Categories)),
	}
	for i, category := range b.opts.Categories {
		m.Entries[category] = lists[i]
		b.logger.Info("category scanned", "category", category, "pairs", len(lists[i]))
	}
	return m, nil
}

func (b *Builder) scanCategory(category string) ([]Entry, error) {
	dir := filepath.Join(b.opts.BaseFolder, category)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("category folder does not exist, recording empty entry", "path", dir)
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	existing := make(map[string]bool, len(dirEntries))
	var rgbFiles []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		existing[name] = true
		if !b.hasExt(name) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(b.opts.MaskPrefix)) {
			continue
		}
		rgbFiles = append(rgbFiles, name)
	}
	sort.Strings(rgbFiles)
	if len(rgbFiles) > b.opts.Limit {
		rgbFiles = rgbFiles[:b.opts.Limit]
	}

	entries := make([]Entry, 0, len(rgbFiles))
	for _, name := range rgbFiles {
		entry := Entry{
			Name: category + "/" + name,
			RGB:  joinRaw(b.opts.BaseFolder, category, name),
		}
		if mask, ok := b.findMask(name, existing); ok {
			entry.Mask = joinRaw(b.opts.BaseFolder, category, mask)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// findMask tries <prefix><stem><ext> then <prefix>_<stem><ext> for each extension.
func (b *Builder) findMask(name string, existing map[string]bool) (string, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, ext := range b.opts.Extensions {
		for _, candidate := range []string{
			b.opts.MaskPrefix + stem + ext,
			b.opts.MaskPrefix + "_" + stem + ext,
		} {
			if existing[candidate] {
				return candidate, true
			}
		}
	}
	return "", false
}

// joinRaw joins path elements with "/" without cleaning them, so the base
// folder appears in the manifest exactly as configured.
func joinRaw(elems ...string) string {
	var sb strings.Builder
	for _, elem := range elems {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "/") {
			sb.WriteByte('/')
		}
		sb.WriteString(elem)
	}
	return sb.String()
}

func (b *Builder) hasExt(name string) bool {
	for _, ext := range b.opts.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Write replaces path with the manifest as indented JSON.
func Write(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPrefix+"*.json")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// BuildAndWrite scans and writes in one step.
func (b *Builder) BuildAndWrite(ctx context.Context, path string) (*Manifest, error) {
	m, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := Write(path, m); err != nil {
		return nil, err
	}
	b.logger.Info("manifest written", "path", path, "pairs", m.Total())
	return m, nil
}
