// ABOUTME: Import coordinator: enumerates source files, extracts and stores them.
// ABOUTME: A bad file is counted and logged; only cancellation stops a run.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harperreed/trainload/internal/fitfile"
	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/observability"
	"github.com/harperreed/trainload/internal/sleep"
)

// Kinds of source files.
const (
	KindActivity = "activity"
	KindSleep    = "sleep"
)

// Store is the write side of the repository used by imports.
type Store interface {
	InsertActivity(ctx context.Context, a *models.Activity, laps []models.Lap, samples []models.Sample) (bool, error)
	InsertSleep(ctx context.Context, s *models.Sleep) (bool, error)
}

// Invalidator drops cached query results.
type Invalidator interface {
	Invalidate()
}

// Counts tallies the outcomes for one kind of file.
type Counts struct {
	Processed int `json:"processed"`
	Imported  int `json:"imported"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

func (c *Counts) add(outcome string) {
	c.Processed++
	switch outcome {
	case observability.OutcomeImported:
		c.Imported++
	case observability.OutcomeSkipped:
		c.Skipped++
	case observability.OutcomeFailed:
		c.Failed++
	}
}

// Summary describes one import run.
type Summary struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Activities Counts        `json:"activities"`
	Sleep      Counts        `json:"sleep"`
}

// Imported reports whether the run stored anything new.
func (s *Summary) Imported() int {
	return s.Activities.Imported + s.Sleep.Imported
}

// Options configures an Importer. Empty directories are not scanned.
type Options struct {
	ActivityDir string
	SleepDir    string
	Extractor   *fitfile.Extractor
	Logger      *log.Logger
	Metrics     *observability.ImportMetrics
	Cache       Invalidator
}

// Importer loads activity and sleep files into a Store.
type Importer struct {
	store     Store
	opts      Options
	extractor *fitfile.Extractor
	logger    *log.Logger
}

// New creates an importer.
func New(store Store, opts Options) *Importer {
	logger := opts.Logger
	if logger == nil {
		logger = observability.Discard()
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = fitfile.NewExtractor(nil, logger)
	}
	return &Importer{store: store, opts: opts, extractor: extractor, logger: logger}
}

// Run imports every activity file and then every sleep file. The returned
// error is non-nil only when ctx is cancelled; the summary is always valid.
func (im *Importer) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	logger := im.logger.With("run", sum.RunID)

	err := im.runActivities(ctx, logger, &sum.Activities)
	if err == nil {
		err = im.runSleep(ctx, logger, &sum.Sleep)
	}

	sum.Duration = time.Since(sum.StartedAt)
	if sum.Imported() > 0 && im.opts.Cache != nil {
		im.opts.Cache.Invalidate()
	}
	im.opts.Metrics.RecordRun(time.Now(), sum.Duration)

	logger.Info("import finished",
		"activities_imported", sum.Activities.Imported,
		"activities_skipped", sum.Activities.Skipped,
		"activities_failed", sum.Activities.Failed,
		"sleep_imported", sum.Sleep.Imported,
		"sleep_skipped", sum.Sleep.Skipped,
		"sleep_failed", sum.Sleep.Failed,
		"took", sum.Duration.Round(time.Millisecond),
	)
	return sum, err
}

func (im *Importer) runActivities(ctx context.Context, logger *log.Logger, counts *Counts) error {
	files, err := listFiles(im.opts.ActivityDir, isActivityFile)
	if err != nil {
		logger.Warn("activity directory unavailable", "dir", im.opts.ActivityDir, "err", err)
		return nil
	}
	logger.Debug("scanning activities", "dir", im.opts.ActivityDir, "files", len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome := im.importActivity(ctx, logger, path)
		counts.add(outcome)
		im.opts.Metrics.Observe(KindActivity, outcome)
	}
	return nil
}

func (im *Importer) importActivity(ctx context.Context, logger *log.Logger, path string) string {
	bundle, err := im.extractor.Extract(path)
	if err != nil {
		logger.Warn("skipping activity file", "file", path, "err", err)
		return observability.OutcomeFailed
	}

	ok, err := im.store.InsertActivity(ctx, &bundle.Activity, bundle.Laps, bundle.Samples)
	if err != nil {
		logger.Error("storing activity failed", "file", path, "activity_id", bundle.Activity.ID, "err", err)
		return observability.OutcomeFailed
	}
	if !ok {
		logger.Debug("activity already stored", "file", path, "activity_id", bundle.Activity.ID)
		return observability.OutcomeSkipped
	}

	im.opts.Metrics.RecordActivityPersisted(bundle.Activity.StartTime)
	logger.Info("imported activity",
		"file", filepath.Base(path),
		"activity_id", bundle.Activity.ID,
		"sport", bundle.Activity.SportName(),
		"laps", len(bundle.Laps),
		"samples", len(bundle.Samples),
	)
	return observability.OutcomeImported
}

func (im *Importer) runSleep(ctx context.Context, logger *log.Logger, counts *Counts) error {
	files, err := listFiles(im.opts.SleepDir, isSleepFile)
	if err != nil {
		logger.Warn("sleep directory unavailable", "dir", im.opts.SleepDir, "err", err)
		return nil
	}
	logger.Debug("scanning sleep", "dir", im.opts.SleepDir, "files", len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome := im.importSleep(ctx, logger, path)
		counts.add(outcome)
		im.opts.Metrics.Observe(KindSleep, outcome)
	}
	return nil
}

func (im *Importer) importSleep(ctx context.Context, logger *log.Logger, path string) string {
	s, err := sleep.Extract(path)
	if err != nil {
		logger.Warn("skipping sleep file", "file", path, "err", err)
		return observability.OutcomeFailed
	}

	ok, err := im.store.InsertSleep(ctx, s)
	if err != nil {
		logger.Error("storing sleep failed", "file", path, "date", s.ID, "err", err)
		return observability.OutcomeFailed
	}
	if !ok {
		logger.Debug("sleep already stored", "file", path, "date", s.ID)
		return observability.OutcomeSkipped
	}
	logger.Info("imported sleep", "file", filepath.Base(path), "date", s.ID)
	return observability.OutcomeImported
}

func isActivityFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".fit")
}

func isSleepFile(name string) bool {
	return strings.HasPrefix(name, "sleep_") && strings.HasSuffix(name, ".json")
}

// listFiles returns the regular files in dir accepted by match, sorted by
// name. An empty dir yields no files.
func listFiles(dir string, match func(string) bool) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory does not exist: %w", err)
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !match(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
