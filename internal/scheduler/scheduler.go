package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"socialdemo/internal/api"
	"socialdemo/internal/app"
)

// Submitter starts a generation run in the background.
type Submitter interface {
	Submit(req app.GenerationRequest) (*api.Run, error)
}

// Scheduler replays one generation request on a cron schedule to keep demo
// content fresh.
type Scheduler struct {
	cron      *cron.Cron
	submitter Submitter
	request   app.GenerationRequest
}

func NewScheduler(submitter Submitter, req app.GenerationRequest) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		submitter: submitter,
		request:   req,
	}
}

// Start validates the request and registers it under spec, a standard
// five-field cron expression or a descriptor such as "@daily".
func (s *Scheduler) Start(spec string) error {
	if err := s.request.Validate(); err != nil {
		return fmt.Errorf("scheduled request: %w", err)
	}
	if _, err := s.cron.AddFunc(spec, s.trigger); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	s.cron.Start()
	slog.Info("Scheduler started", "schedule", spec, "method", s.request.Method)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) trigger() {
	run, err := s.submitter.Submit(s.request)
	if err != nil {
		slog.Error("Scheduled run rejected", "error", err)
		return
	}
	slog.Info("Scheduled run started", "run", run.ID)
}
