package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ramsbaby/lessonledger/internal/engine"
	"github.com/ramsbaby/lessonledger/internal/extract"
	"github.com/ramsbaby/lessonledger/internal/fx"
	"github.com/ramsbaby/lessonledger/internal/metrics"
	"github.com/ramsbaby/lessonledger/internal/model"
	"github.com/ramsbaby/lessonledger/internal/report"
)

// MessageSource supplies platform mail, split by kind.
type MessageSource interface {
	Bookings(ctx context.Context, since time.Time) ([]extract.Message, error)
	Cancellations(ctx context.Context, day time.Time) ([]extract.Message, error)
}

// EventSource supplies the day's lesson events in calendar order.
type EventSource interface {
	TodayLessons(ctx context.Context, day time.Time, tz *time.Location, suffix string) ([]model.LessonEvent, error)
}

// RateService converts currencies to KRW and discloses the rates it used.
type RateService interface {
	engine.RateSource
	Snapshot(ctx context.Context, currency string) (fx.Snapshot, error)
}

// ReportSink delivers a rendered report.
type ReportSink interface {
	Send(ctx context.Context, subject, body string) error
}

// RunArchive persists finished runs. Optional.
type RunArchive interface {
	SaveRun(ctx context.Context, runID uuid.UUID, ranAt time.Time, res model.Result) error
}

// Params are the collaborators and settings for a Job.
type Params struct {
	Mail     MessageSource
	Calendar EventSource
	FX       RateService
	Sink     ReportSink
	Archive  RunArchive // nil disables archiving

	TimeZone     *time.Location
	LessonSuffix string
	LookBackDays int
	Concurrency  int
}

// Job runs the summary pipeline.
type Job struct {
	p      Params
	engine *engine.Engine
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Job.
type Option func(*Job)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Job) {
		j.logger = logger
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(j *Job) {
		j.now = now
	}
}

// New creates a Job.
func New(p Params, opts ...Option) *Job {
	if p.Concurrency < 1 {
		p.Concurrency = 1
	}
	j := &Job{
		p:      p,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.engine = engine.New(p.FX, engine.WithLogger(j.logger))
	return j
}

// Run executes one summary run for the current day.
func (j *Job) Run(ctx context.Context) error {
	start := j.now()
	err := j.run(ctx)
	metrics.RunDuration.Observe(j.now().Sub(start).Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.RunsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (j *Job) run(ctx context.Context) error {
	runID := uuid.New()
	day := j.now().In(j.p.TimeZone)
	since := day.AddDate(0, 0, -j.p.LookBackDays)

	j.logger.Info("summary run starting",
		"run_id", runID,
		"day", day.Format("2006-01-02"),
		"look_back_days", j.p.LookBackDays,
	)

	bookings, err := j.p.Mail.Bookings(ctx, since)
	if err != nil {
		return fmt.Errorf("fetch bookings: %w", err)
	}

	entries := j.extractRates(bookings)
	index := engine.BuildRateIndex(entries)

	events, err := j.p.Calendar.TodayLessons(ctx, day, j.p.TimeZone, j.p.LessonSuffix)
	if err != nil {
		return fmt.Errorf("load calendar: %w", err)
	}

	compensations := j.compensations(ctx, day)

	res, err := j.engine.Reconcile(ctx, events, index, compensations)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	subject, body := report.Render(day, res, j.snapshots(ctx, res))
	if err := j.p.Sink.Send(ctx, subject, body); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	if j.p.Archive != nil {
		if err := j.p.Archive.SaveRun(ctx, runID, j.now().In(j.p.TimeZone), res); err != nil {
			// History only, never worth failing a delivered run.
			j.logger.Warn("archiving run failed", "run_id", runID, "err", err)
		}
	}

	j.logger.Info("summary run complete",
		"run_id", runID,
		"rows", len(res.Rows),
		"unknown", len(res.Unknown),
		"krw_total", res.KRWTotal.String(),
	)
	return nil
}

// extractRates runs the rate extractor over the booking mail with bounded
// parallelism, preserving message order so the index sees entries the way
// the mailbox returned them.
func (j *Job) extractRates(msgs []extract.Message) []model.RateEntry {
	type slot struct {
		entry model.RateEntry
		ok    bool
	}
	slots := make([]slot, len(msgs))

	sem := make(chan struct{}, j.p.Concurrency)
	var wg sync.WaitGroup
	for i, msg := range msgs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, msg extract.Message) {
			defer wg.Done()
			defer func() { <-sem }()
			entry, ok := extract.Rate(msg)
			slots[i] = slot{entry: entry, ok: ok}
		}(i, msg)
	}
	wg.Wait()

	var entries []model.RateEntry
	for _, s := range slots {
		if !s.ok {
			metrics.ParseMisses.WithLabelValues("rate").Inc()
			continue
		}
		entries = append(entries, s.entry)
	}

	j.logger.Debug("rate extraction done",
		"messages", len(msgs),
		"entries", len(entries),
	)
	return entries
}

// compensations sweeps today's cancellation mail. The sweep degrades to
// empty on failure so a broken cancellation search never costs the day's
// report.
func (j *Job) compensations(ctx context.Context, day time.Time) []model.RateEntry {
	msgs, err := j.p.Mail.Cancellations(ctx, day)
	if err != nil {
		j.logger.Warn("cancellation sweep failed, continuing without compensation", "err", err)
		return nil
	}

	var out []model.RateEntry
	for _, msg := range msgs {
		entry, ok := extract.Compensation(msg, day)
		if !ok {
			metrics.ParseMisses.WithLabelValues("compensation").Inc()
			continue
		}
		out = append(out, entry)
	}
	return out
}

// snapshots collects the disclosed rate per result currency. A currency
// whose snapshot fails just goes undisclosed; the conversion itself already
// happened inside Reconcile.
func (j *Job) snapshots(ctx context.Context, res model.Result) map[string]fx.Snapshot {
	out := make(map[string]fx.Snapshot, len(res.Totals))
	for _, cur := range res.Currencies() {
		snap, err := j.p.FX.Snapshot(ctx, cur)
		if err != nil {
			j.logger.Warn("rate snapshot unavailable", "currency", cur, "err", err)
			continue
		}
		out[cur] = snap
	}
	return out
}
