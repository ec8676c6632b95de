package api

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialdemo/internal/app"
	"socialdemo/internal/batch"
)

var ErrRunNotFound = errors.New("run not found")

// Generator runs one generation batch synchronously.
type Generator interface {
	Run(ctx context.Context, req app.GenerationRequest, opts app.RunOptions) (*batch.Report, error)
}

type Run struct {
	ID         string                `json:"id"`
	Request    app.GenerationRequest `json:"request"`
	State      batch.State           `json:"state"`
	Current    int                   `json:"current"`
	Total      int                   `json:"total"`
	Message    string                `json:"message,omitempty"`
	Errors     []batch.UnitError     `json:"errors,omitempty"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
}

// Registry starts runs in the background and tracks their progress. Runs
// share nothing but the registry itself.
type Registry struct {
	mu        sync.RWMutex
	runs      map[string]*Run
	generator Generator
	ctx       context.Context
	wg        sync.WaitGroup
}

// NewRegistry ties every run to ctx; cancelling it stops runs between units.
func NewRegistry(ctx context.Context, generator Generator) *Registry {
	return &Registry{
		runs:      make(map[string]*Run),
		generator: generator,
		ctx:       ctx,
	}
}

// Submit validates req and starts it in a new goroutine.
func (r *Registry) Submit(req app.GenerationRequest) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.New().String(),
		Request:   req,
		State:     batch.StatePending,
		Total:     req.UnitCount(),
		StartedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.runs[run.ID] = run
	r.mu.Unlock()

	r.wg.Add(1)
	go r.execute(run.ID, req)

	snapshot := *run
	return &snapshot, nil
}

func (r *Registry) execute(id string, req app.GenerationRequest) {
	defer r.wg.Done()

	r.update(id, func(run *Run) { run.State = batch.StateRunning })

	report, err := r.generator.Run(r.ctx, req, app.RunOptions{
		RunID:  id,
		Random: rand.New(rand.NewSource(time.Now().UnixNano())),
		OnProgress: func(p batch.Progress) {
			r.update(id, func(run *Run) {
				run.Current = p.Current
				run.Total = p.Total
			})
		},
	})

	now := time.Now().UTC()
	r.update(id, func(run *Run) {
		run.FinishedAt = &now
		if err != nil {
			run.State = batch.StateCompletedWithErrors
			run.Message = err.Error()
			return
		}
		run.State = report.State
		run.Message = report.Message
		run.Errors = report.Errors
	})

	if err != nil {
		slog.Error("Run failed", "run", id, "error", err)
	}
}

func (r *Registry) update(id string, fn func(*Run)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok {
		fn(run)
	}
}

func (r *Registry) Get(id string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	snapshot := *run
	return &snapshot, nil
}

// List returns every run, newest first.
func (r *Registry) List() []*Run {
	r.mu.RLock()
	runs := make([]*Run, 0, len(r.runs))
	for _, run := range r.runs {
		snapshot := *run
		runs = append(runs, &snapshot)
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs
}

// Wait blocks until every submitted run has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}
