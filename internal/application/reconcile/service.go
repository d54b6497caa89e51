package reconcile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dms/backend/internal/domain/reconcile"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc receives best-effort percent-complete updates (0..100).
// Updates from concurrent month tasks may race; the reported fraction is
// monotonically non-decreasing and reaches 100 on completion.
type ProgressFunc func(percent float64)

// MonthFailure identifies the month and joiner behind a store-level
// failure, for diagnostics on partial reports.
type MonthFailure struct {
	Month  string            `json:"month"`
	Joiner reconcile.RowType `json:"joiner"`
	Error  string            `json:"error"`
}

// Report is the assembled reconciliation output. Rows is a flat
// concatenation per month and joiner with no dedup or re-sort; sort order
// belongs to the caller. Partial is set whenever any month or joiner
// failed — a partial report never claims completeness.
type Report struct {
	RunID    uuid.UUID       `json:"run_id"`
	Months   []string        `json:"months"`
	Rows     []reconcile.Row `json:"rows"`
	Partial  bool            `json:"partial"`
	Failures []MonthFailure  `json:"failures,omitempty"`
}

type runConfig struct {
	progress ProgressFunc
	token    string
}

// RunOption configures a single reconciliation run.
type RunOption func(*runConfig)

// WithProgress registers a progress callback for the run.
func WithProgress(fn ProgressFunc) RunOption {
	return func(cfg *runConfig) { cfg.progress = fn }
}

// WithClientToken ties the run to a client token. Starting a new run with
// the same token cancels the previous in-flight run; its results are
// discarded, never merged into a stale report.
func WithClientToken(token string) RunOption {
	return func(cfg *runConfig) { cfg.token = token }
}

// RunStatus is a point-in-time view of an asynchronous run.
type RunStatus struct {
	RunID    uuid.UUID `json:"run_id"`
	Percent  float64   `json:"percent"`
	Done     bool      `json:"done"`
	Error    string    `json:"error,omitempty"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

type run struct {
	id         uuid.UUID
	cancel     context.CancelFunc
	percent    atomic.Value // float64
	done       atomic.Bool
	superseded atomic.Bool
	started    time.Time
	finished   time.Time
	report     *Report
	err        error
	mu         sync.Mutex
}

// Service orchestrates reconciliation runs over the domain engine: months
// concurrently, joiners per month concurrently, with progress reporting,
// supersession and partial-failure accounting.
type Service struct {
	engine *reconcile.Engine
	log    *zap.Logger

	mu     sync.Mutex
	runs   map[uuid.UUID]*run
	latest map[string]uuid.UUID
}

// NewService creates a reconciliation service.
func NewService(engine *reconcile.Engine, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		engine: engine,
		log:    log,
		runs:   make(map[uuid.UUID]*run),
		latest: make(map[string]uuid.UUID),
	}
}

// Run executes a full reconciliation for the inclusive date range and
// blocks until it completes, is canceled or is superseded. An inverted
// range returns an empty report without touching the record store.
func (s *Service) Run(ctx context.Context, start, end time.Time, opts ...RunOption) (*Report, error) {
	cfg := runConfig{progress: func(float64) {}}
	for _, opt := range opts {
		opt(&cfg)
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{id: uuid.New(), cancel: cancel, started: time.Now()}
	r.percent.Store(0.0)
	s.register(r, cfg.token)
	defer cancel()

	report, err := s.execute(runCtx, r, start, end, cfg)
	s.finish(r, report, err)
	return report, err
}

// Start launches a run in the background and returns its ID immediately.
// Progress and outcome are observable through Status.
func (s *Service) Start(ctx context.Context, start, end time.Time, opts ...RunOption) uuid.UUID {
	cfg := runConfig{progress: func(float64) {}}
	for _, opt := range opts {
		opt(&cfg)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{id: uuid.New(), cancel: cancel, started: time.Now()}
	r.percent.Store(0.0)
	s.register(r, cfg.token)

	go func() {
		defer cancel()
		report, err := s.execute(runCtx, r, start, end, cfg)
		s.finish(r, report, err)
	}()
	return r.id
}

// Status reports the current state of a run.
func (s *Service) Status(id uuid.UUID) (RunStatus, error) {
	s.mu.Lock()
	r, ok := s.runs[id]
	s.mu.Unlock()
	if !ok {
		return RunStatus{}, shared.ErrRunNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	status := RunStatus{
		RunID:    r.id,
		Percent:  r.percent.Load().(float64),
		Done:     r.done.Load(),
		Started:  r.started,
		Finished: r.finished,
	}
	if r.err != nil {
		status.Error = r.err.Error()
	}
	return status, nil
}

// Result returns the finished report for a run, or ErrRunNotFound /
// nil-report while still running.
func (s *Service) Result(id uuid.UUID) (*Report, error) {
	s.mu.Lock()
	r, ok := s.runs[id]
	s.mu.Unlock()
	if !ok {
		return nil, shared.ErrRunNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report, r.err
}

func (s *Service) register(r *run, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.id] = r
	if token == "" {
		return
	}
	if prevID, ok := s.latest[token]; ok {
		if prev, ok := s.runs[prevID]; ok && !prev.done.Load() {
			// Superseded: let in-flight store calls drain, drop the output.
			prev.superseded.Store(true)
			prev.cancel()
		}
	}
	s.latest[token] = r.id
}

func (s *Service) finish(r *run, report *Report, err error) {
	r.mu.Lock()
	r.report = report
	r.err = err
	r.finished = time.Now()
	r.mu.Unlock()
	r.done.Store(true)
}

func (s *Service) execute(ctx context.Context, r *run, start, end time.Time, cfg runConfig) (*Report, error) {
	windows := reconcile.MonthWindows(start, end)
	report := &Report{RunID: r.id, Months: make([]string, len(windows))}
	for i, w := range windows {
		report.Months[i] = w.Key
	}
	if len(windows) == 0 {
		r.percent.Store(100.0)
		cfg.progress(100)
		return report, nil
	}

	joiners := s.engine.Joiners()
	totalTasks := len(windows) * len(joiners)
	var doneTasks atomic.Int64

	// Results are index-disjoint per (month, joiner), so the only shared
	// state across tasks is the progress counter and the failure list.
	results := make([][]reconcile.Row, totalTasks)
	var (
		failMu   sync.Mutex
		failures []MonthFailure
	)

	g := &errgroup.Group{}
	for mi, w := range windows {
		for ji, j := range joiners {
			slot := mi*len(joiners) + ji
			g.Go(func() error {
				rows, err := j.Join(ctx, w)
				if err != nil {
					// One month or joiner failing must not abort its
					// siblings; record it and keep going.
					s.log.Warn("joiner failed",
						zap.String("month", w.Key),
						zap.String("joiner", string(j.Type())),
						zap.Error(err),
					)
					failMu.Lock()
					failures = append(failures, MonthFailure{
						Month:  w.Key,
						Joiner: j.Type(),
						Error:  err.Error(),
					})
					failMu.Unlock()
				} else {
					results[slot] = rows
				}
				n := doneTasks.Add(1)
				pct := 100 * float64(n) / float64(totalTasks)
				r.percent.Store(pct)
				cfg.progress(pct)
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		// Canceled or superseded: in-flight results are discarded, never
		// surfaced as a stale report.
		if r.superseded.Load() {
			return nil, shared.ErrRunSuperseded
		}
		return nil, err
	}

	for _, rows := range results {
		report.Rows = append(report.Rows, rows...)
	}
	if len(failures) > 0 {
		report.Partial = true
		report.Failures = failures
		first := failures[0]
		return report, fmt.Errorf("reconciliation incomplete, first failure in %s/%s: %s: %w",
			first.Month, first.Joiner, first.Error, shared.ErrStoreUnavailable)
	}

	s.log.Info("reconciliation complete",
		zap.String("run_id", r.id.String()),
		zap.Int("months", len(windows)),
		zap.Int("rows", len(report.Rows)),
	)
	return report, nil
}
