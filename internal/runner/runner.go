// Package runner drives one batch over all question sets: load, select,
// deliver, commit. Each set is isolated; one set failing never stops the
// others.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/qadigest/internal/digest"
	"github.com/abhisek/qadigest/internal/history"
	"github.com/abhisek/qadigest/internal/notify"
	"github.com/abhisek/qadigest/internal/qa"
	"github.com/abhisek/qadigest/internal/questionset"
	"github.com/abhisek/qadigest/internal/spacedrep"
)

// Options configures a run.
type Options struct {
	SetsDir string

	// Sets limits the run to these set names. Empty runs every set.
	Sets []string

	// DryRun selects and delivers but never commits history.
	DryRun bool

	// CommitOnFailure commits history even when delivery failed.
	CommitOnFailure bool

	// AlertOnFailure sends one alert listing failed sets after the batch.
	AlertOnFailure bool

	From string
	To   string
}

// Driver runs batches. It holds no per-run state and may be reused.
type Driver struct {
	opts      Options
	history   history.Store
	notifier  notify.Notifier
	selector  *spacedrep.Selector
	assembler *digest.Assembler
	logger    *zap.Logger
	now       func() time.Time
	newRunID  func() string
}

// Option customizes a Driver.
type Option func(*Driver)

// WithSelector sets the selector, e.g. one with a seeded random source.
func WithSelector(s *spacedrep.Selector) Option {
	return func(d *Driver) { d.selector = s }
}

// WithClock sets the clock used for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// WithRunID sets the run ID generator.
func WithRunID(f func() string) Option {
	return func(d *Driver) { d.newRunID = f }
}

// New creates a Driver.
func New(opts Options, store history.Store, n notify.Notifier, logger *zap.Logger, options ...Option) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Driver{
		opts:      opts,
		history:   store,
		notifier:  n,
		assembler: digest.NewAssembler(),
		logger:    logger.Named("runner"),
		now:       time.Now,
		newRunID:  func() string { return uuid.NewString() },
	}
	for _, o := range options {
		o(d)
	}
	if d.selector == nil {
		d.selector = spacedrep.NewSelector(spacedrep.WithClock(d.now))
	}
	return d
}

// Run processes every discovered set in directory order. The returned
// error covers only problems that prevent the batch from starting; per-set
// failures are in the report.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	sets, err := questionset.Discover(d.opts.SetsDir)
	if err != nil {
		return nil, err
	}
	sets = questionset.Filter(sets, d.opts.Sets)

	report := &Report{
		RunID:   d.newRunID(),
		DryRun:  d.opts.DryRun,
		Started: d.now(),
	}
	log := d.logger.With(zap.String("run_id", report.RunID))
	log.Info("run started", zap.Int("sets", len(sets)), zap.Bool("dry_run", d.opts.DryRun))

	for _, set := range sets {
		if err := ctx.Err(); err != nil {
			report.Sets = append(report.Sets, SetResult{Set: set.Name(), Dir: set.Dir, State: StateFailed, Err: err})
			continue
		}
		report.Sets = append(report.Sets, d.RunSet(ctx, report.RunID, set))
	}

	if d.opts.AlertOnFailure && !d.opts.DryRun && report.Failed() {
		report.AlertErr = d.sendAlert(ctx, report)
	}

	report.Finished = d.now()
	log.Info("run finished",
		zap.Int("committed", report.Count(StateCommitted)),
		zap.Int("paused", report.Count(StatePaused)),
		zap.Int("failed", report.Count(StateFailed)),
	)
	return report, nil
}

// RunSet takes one set through load, select, deliver and commit.
func (d *Driver) RunSet(ctx context.Context, runID string, set questionset.Set) SetResult {
	res := SetResult{Set: set.Name(), Dir: set.Dir, State: StateLoaded}
	log := d.logger.With(zap.String("run_id", runID), zap.String("set", res.Set))

	fail := func(err error) SetResult {
		res.State = StateFailed
		res.Err = err
		log.Error("set failed", zap.Error(err))
		return res
	}

	if set.Err != nil {
		return fail(set.Err)
	}
	cfg := set.Config
	if cfg.Paused {
		res.State = StatePaused
		log.Info("set paused, skipping")
		return res
	}

	res.Algorithm, res.FallbackAlgorithm = d.algorithm(log, cfg.QuestionAlgorithm)
	if res.FallbackAlgorithm {
		res.RequestedAlgorithm = cfg.QuestionAlgorithm
	}

	pool, err := qa.Load(set.PoolPath())
	if err != nil {
		return fail(fmt.Errorf("load pool: %w", err))
	}
	res.PoolSize = pool.Len()

	hist := d.history.Load(ctx, cfg.InternalName)
	res.Selected = d.selector.Select(res.Algorithm, pool, hist, cfg.NumQuestions)
	res.State = StateSelected
	if len(res.Selected) == 0 {
		log.Info("pool is empty, nothing to deliver")
		return res
	}
	log.Debug("questions selected", zap.Stringer("algorithm", res.Algorithm), zap.Strings("ids", res.Selected))

	entries := make([]qa.Entry, 0, len(res.Selected))
	for _, id := range res.Selected {
		e, _ := pool.Get(id)
		entries = append(entries, e)
	}
	dg, err := d.assembler.Assemble(cfg.SubjectTitle, cfg.KeysAreQuestion, entries)
	if err != nil {
		return fail(fmt.Errorf("assemble digest: %w", err))
	}

	sendErr := d.notifier.Send(ctx, notify.Message{
		RunID:         runID,
		Set:           res.Set,
		From:          d.opts.From,
		To:            d.opts.To,
		Subject:       dg.Subject,
		HTML:          dg.HTML,
		QuestionCount: len(entries),
	})
	if sendErr != nil {
		sendErr = &notify.DeliveryError{Notifier: d.notifier.Name(), Set: res.Set, Err: sendErr}
		if !d.opts.CommitOnFailure || d.opts.DryRun {
			return fail(sendErr)
		}
		log.Warn("delivery failed, committing anyway", zap.Error(sendErr))
	} else {
		res.Delivered = true
		res.State = StateDelivered
	}

	if d.opts.DryRun {
		log.Info("dry run, history not committed")
		return res
	}

	if err := d.history.Commit(ctx, cfg.InternalName, res.Selected, d.now()); err != nil {
		return fail(errors.Join(sendErr, fmt.Errorf("commit history: %w", err)))
	}
	res.Committed = true
	if sendErr != nil {
		return fail(sendErr)
	}
	res.State = StateCommitted
	log.Info("set committed", zap.Int("questions", len(res.Selected)))
	return res
}

func (d *Driver) algorithm(log *zap.Logger, name string) (spacedrep.Algorithm, bool) {
	alg, err := spacedrep.ParseAlgorithm(name)
	if err != nil {
		log.Warn("unknown question algorithm, using default",
			zap.String("requested", name), zap.Stringer("algorithm", alg))
		return alg, true
	}
	return alg, false
}

func (d *Driver) sendAlert(ctx context.Context, report *Report) error {
	var failures []digest.Failure
	for _, s := range report.Failures() {
		failures = append(failures, digest.Failure{Set: s.Set, Err: s.Err.Error()})
	}
	alert := digest.Alert(report.RunID, failures)

	err := d.notifier.Send(ctx, notify.Message{
		RunID:   report.RunID,
		From:    d.opts.From,
		To:      d.opts.To,
		Subject: alert.Subject,
		HTML:    alert.HTML,
	})
	if err != nil {
		d.logger.Error("failure alert not delivered", zap.String("run_id", report.RunID), zap.Error(err))
	}
	return err
}
