package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type State string

const (
	StatePending             State = "pending"
	StateRunning             State = "running"
	StateCompleted           State = "completed"
	StateCompletedWithErrors State = "completed_with_errors"
)

const (
	messageOne   = "One item processed."
	messageMany  = "%d items processed."
	messageError = "Finished with an error."
)

// Unit is one independently failing step of a batch.
type Unit struct {
	Name string
	Run  func(ctx context.Context) error
}

// Progress is reported after every unit, successful or not.
type Progress struct {
	Current int
	Total   int
	Unit    string
	Err     error
}

type UnitError struct {
	Unit string `json:"unit"`
	Err  string `json:"error"`
}

type Report struct {
	State     State       `json:"state"`
	Total     int         `json:"total"`
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	Errors    []UnitError `json:"errors,omitempty"`
	Cancelled bool        `json:"cancelled,omitempty"`
	Message   string      `json:"message"`
}

type Options struct {
	OnProgress func(Progress)
	OnFinish   func(Report)
}

// Runner executes units one at a time in enqueue order.
type Runner struct {
	mu    sync.Mutex
	units []Unit
	state State
	opts  Options
}

func NewRunner(opts Options) *Runner {
	return &Runner{state: StatePending, opts: opts}
}

func (r *Runner) Add(units ...Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units = append(r.units, units...)
}

// Run drains the queue. A failing unit is recorded and the next one starts.
// When ctx is done no further unit is started. Run can only be called once.
func (r *Runner) Run(ctx context.Context) Report {
	r.mu.Lock()
	if r.state != StatePending {
		r.mu.Unlock()
		return Report{State: r.state, Message: "batch already started"}
	}
	r.state = StateRunning
	units := r.units
	r.mu.Unlock()

	report := Report{Total: len(units)}
	for i, u := range units {
		if ctx.Err() != nil {
			report.Cancelled = true
			slog.Warn("Batch cancelled", "remaining", len(units)-i)
			break
		}

		err := u.Run(ctx)
		report.Processed++
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, UnitError{Unit: u.Name, Err: err.Error()})
			slog.Error("Unit failed", "unit", u.Name, "error", err)
		}

		if r.opts.OnProgress != nil {
			r.opts.OnProgress(Progress{Current: i + 1, Total: len(units), Unit: u.Name, Err: err})
		}
	}

	report.State = StateCompleted
	if report.Failed > 0 || report.Cancelled {
		report.State = StateCompletedWithErrors
	}
	report.Message = FinishMessage(report.State == StateCompleted, report.Processed)

	r.mu.Lock()
	r.state = report.State
	r.mu.Unlock()

	if r.opts.OnFinish != nil {
		r.opts.OnFinish(report)
	}
	return report
}

// FinishMessage renders the user-facing summary of a batch.
func FinishMessage(success bool, processed int) string {
	if !success {
		return messageError
	}
	if processed == 1 {
		return messageOne
	}
	return fmt.Sprintf(messageMany, processed)
}
