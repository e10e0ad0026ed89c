package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BatchRunner is the per-tick reconciliation work: remind users and
// advance their scan windows. timesheet.Service implements it.
type BatchRunner interface {
	RunHourlyBatch(ctx context.Context)
}

// Exporter pushes completed entries to the spreadsheet after each batch.
type Exporter interface {
	ExportAll(ctx context.Context) error
}

// Scheduler fires the hourly batch on the hour.
type Scheduler struct {
	batch    BatchRunner
	exporter Exporter // nil when no sheet is configured
	log      *zap.Logger
}

// New creates a Scheduler. exporter may be nil.
func New(batch BatchRunner, exporter Exporter, log *zap.Logger) *Scheduler {
	return &Scheduler{batch: batch, exporter: exporter, log: log}
}

// Run blocks until ctx is canceled, ticking at minute zero of every hour.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc("0 * * * *", func() { s.Tick(ctx) })
	if err != nil {
		return err
	}
	c.Start()

	<-ctx.Done()
	s.log.Info("scheduler stopping")
	<-c.Stop().Done()
	return nil
}

// Tick performs one full cycle: reconcile every user, then export.
func (s *Scheduler) Tick(ctx context.Context) {
	s.log.Info("hourly batch starting")
	s.batch.RunHourlyBatch(ctx)

	if s.exporter != nil {
		if err := s.exporter.ExportAll(ctx); err != nil {
			s.log.Error("spreadsheet export failed", zap.Error(err))
		}
	}
}
