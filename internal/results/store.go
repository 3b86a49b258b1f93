package results

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/models"
)

//go:generate go tool mockgen -destination=mock_source.go -package=results . Source

// ErrRunNotFound is returned when a run id does not match any loaded run.
var ErrRunNotFound = errors.New("results: run not found")

// Source provides test runs and their outcomes.
type Source interface {
	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]models.TestRun, error)
	// GetRun returns a single run.
	GetRun(ctx context.Context, id string) (*models.TestRun, error)
	// Outcomes returns the outcomes of a run in file order.
	Outcomes(ctx context.Context, runID string) ([]models.EvaluationOutcome, error)
}

// LoadFiles loads paths concurrently, at most limit at a time (no limit
// when limit <= 0). Files are returned in the order given.
func LoadFiles(ctx context.Context, paths []string, limit int) ([]*RunFile, error) {
	files := make([]*RunFile, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rf, err := LoadFile(p)
			if err != nil {
				return err
			}
			files[i] = rf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// FileStore serves runs from result files. Paths may be files or
// directories; directories contribute every result file they contain,
// non-recursively. Data is loaded on first use.
type FileStore struct {
	paths []string
	limit int

	mu      sync.RWMutex
	runs    map[string]*RunFile
	order   []string
	loaded  bool
	loadErr error
}

// NewFileStore creates a FileStore reading from paths with at most
// concurrency files open at once.
func NewFileStore(paths []string, concurrency int) *FileStore {
	return &FileStore{
		paths: paths,
		limit: concurrency,
		runs:  make(map[string]*RunFile),
	}
}

func (fs *FileStore) load(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	files, err := expand(fs.paths)
	if err == nil {
		var loaded []*RunFile
		loaded, err = LoadFiles(ctx, files, fs.limit)
		if err == nil {
			fs.index(loaded)
		}
	}
	fs.loaded = err == nil
	fs.loadErr = err
	return err
}

// index merges files that share a run id; later files append outcomes.
func (fs *FileStore) index(files []*RunFile) {
	fs.runs = make(map[string]*RunFile, len(files))
	for _, rf := range files {
		if existing, ok := fs.runs[rf.Run.ID]; ok {
			slog.Debug("Merging result file into existing run", "run", rf.Run.ID, "outcomes", len(rf.Results))
			existing.Results = append(existing.Results, rf.Results...)
			existing.Run.TotalCases += rf.Run.TotalCases
			existing.Run.PassedCases += rf.Run.PassedCases
			existing.Run.FailedCases += rf.Run.FailedCases
			continue
		}
		fs.runs[rf.Run.ID] = rf
	}

	fs.order = make([]string, 0, len(fs.runs))
	for id := range fs.runs {
		fs.order = append(fs.order, id)
	}
	sort.SliceStable(fs.order, func(i, j int) bool {
		a, b := fs.runs[fs.order[i]].Run, fs.runs[fs.order[j]].Run
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	slog.Debug("Indexed result files", "files", len(files), "runs", len(fs.runs))
}

func (fs *FileStore) ensureLoaded(ctx context.Context) error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load(ctx)
}

// Reload discards loaded data and reads all files again.
func (fs *FileStore) Reload(ctx context.Context) error {
	return fs.load(ctx)
}

// ListRuns returns all runs, newest first. Ties are broken by id.
func (fs *FileStore) ListRuns(ctx context.Context) ([]models.TestRun, error) {
	if err := fs.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	runs := make([]models.TestRun, 0, len(fs.order))
	for _, id := range fs.order {
		runs = append(runs, fs.runs[id].Run)
	}
	return runs, nil
}

// GetRun returns the run with the given id or ErrRunNotFound.
func (fs *FileStore) GetRun(ctx context.Context, id string) (*models.TestRun, error) {
	if err := fs.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rf, ok := fs.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	run := rf.Run
	return &run, nil
}

// Outcomes returns a copy of the run's outcomes.
func (fs *FileStore) Outcomes(ctx context.Context, runID string) ([]models.EvaluationOutcome, error) {
	if err := fs.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rf, ok := fs.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return append([]models.EvaluationOutcome(nil), rf.Results...), nil
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("results: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("results: reading %s: %w", p, err)
		}
		for _, e := range entries {
			if !e.IsDir() && IsResultFile(e.Name()) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return files, nil
}

// AllOutcomes concatenates the outcomes of every run from src, runs in
// ListRuns order.
func AllOutcomes(ctx context.Context, src Source) ([]models.EvaluationOutcome, error) {
	runs, err := src.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	var all []models.EvaluationOutcome
	for _, r := range runs {
		outs, err := src.Outcomes(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		all = append(all, outs...)
	}
	return all, nil
}

// OutcomesPage returns one page of a run's outcomes after applying filter.
// Totals in the page count filtered outcomes only.
func OutcomesPage(ctx context.Context, src Source, runID string, filter aggregate.Filter, page, pageSize int) (models.Page[models.EvaluationOutcome], error) {
	outs, err := src.Outcomes(ctx, runID)
	if err != nil {
		return models.Page[models.EvaluationOutcome]{}, err
	}
	return models.Paginate(aggregate.FilterOutcomes(outs, filter), page, pageSize), nil
}

// Ensure FileStore satisfies Source.
var _ Source = (*FileStore)(nil)
