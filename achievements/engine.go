// Package achievements decides which achievements a user has reached.
//
// A trigger names an event ("submission", "char_changed", "404", ...). The
// Engine admits at most one evaluation run per user through a Gate; triggers
// arriving while a run is in flight wait in the gate and are evaluated by
// follow-up runs. A run builds a Snapshot of the user's progress, evaluates
// the rules of every open achievement the trigger makes eligible, records
// unlocks and notifies the user. Callers never wait for a run.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"smartbeans/models"
)

// KindAchievementUnlocked is the notification kind sent for every unlock.
const KindAchievementUnlocked = models.MessageAchievementUnlocked

// Notifier delivers a notification to a user. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, username, kind string, payload any)
}

// PublicAchievement is the view of an achievement shown to a user.
type PublicAchievement struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Frequency   float64 `json:"frequency"`
}

// RunError describes a failed evaluation run.
type RunError struct {
	Username string
	Trigger  string
	Err      error
}

func (e RunError) Error() string {
	return fmt.Sprintf("evaluate %q for %s: %v", e.Trigger, e.Username, e.Err)
}

func (e RunError) Unwrap() error {
	return e.Err
}

// Config wires an Engine.
type Config struct {
	Catalog    *Catalog
	Rules      Registry
	Snapshots  *SnapshotProvider
	Unlocks    UnlockStore
	Notifier   Notifier
	Statistics *Statistics

	// Workers and QueueSize bound the evaluation pool.
	Workers   int
	QueueSize int

	Logger *slog.Logger
	Now    func() time.Time
}

// Engine evaluates achievement triggers in the background.
type Engine struct {
	catalog   *Catalog
	rules     Registry
	snapshots *SnapshotProvider
	unlocks   UnlockStore
	notifier  Notifier
	stats     *Statistics
	gate      *Gate
	pool      *Pool
	logger    *slog.Logger
	now       func() time.Time
	errs      chan RunError

	// parked holds admitted runs the pool had no room for.
	parkMu sync.Mutex
	parked []parkedRun
}

type parkedRun struct {
	id      Identity
	trigger string
}

// NewEngine validates the configuration and starts the evaluation pool.
// A catalog/registry mismatch fails with ErrConfiguration.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("%w: no catalog", ErrConfiguration)
	}
	if err := ValidateRegistry(cfg.Catalog, cfg.Rules); err != nil {
		return nil, err
	}
	if cfg.Snapshots == nil || cfg.Unlocks == nil {
		return nil, errors.New("achievements: snapshot provider and unlock store are required")
	}

	e := &Engine{
		catalog:   cfg.Catalog,
		rules:     cfg.Rules,
		snapshots: cfg.Snapshots,
		unlocks:   cfg.Unlocks,
		notifier:  cfg.Notifier,
		stats:     cfg.Statistics,
		gate:      NewGate(),
		logger:    cfg.Logger,
		now:       cfg.Now,
		errs:      make(chan RunError, 64),
	}
	if e.notifier == nil {
		e.notifier = discardNotifier{}
	}
	if e.stats == nil {
		e.stats = NewStatistics(cfg.Unlocks, DefaultFrequencyTTL)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	e.pool = NewPool(cfg.Workers, cfg.QueueSize, e.logger)
	return e, nil
}

// Catalog returns the engine's achievement catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Errors returns failed runs. Sends never block; when nobody reads, errors
// are only logged.
func (e *Engine) Errors() <-chan RunError {
	return e.errs
}

// Close stops the pool after the queued runs are finished.
func (e *Engine) Close() {
	e.pool.Close()
}

// Submit hands a trigger to the engine and returns without waiting for the
// evaluation or for pool capacity. It reports true if a run was scheduled
// and false if the trigger was queued behind the user's current run.
func (e *Engine) Submit(ctx context.Context, id Identity, trigger string) (bool, error) {
	if id.Username == "" {
		return false, errors.New("achievements: empty username")
	}
	if trigger == "" {
		return false, errors.New("achievements: empty trigger")
	}

	if !e.gate.TryAdmit(id.Username, trigger) {
		triggersTotal.WithLabelValues(trigger, resultQueued).Inc()
		return false, nil
	}

	if !e.schedule(id, trigger) {
		return false, e.reject(id, trigger, ErrPoolClosed)
	}
	return true, nil
}

// schedule hands an admitted run to the pool without waiting. When the
// queue is full the run is parked: a full queue holds work that has not
// started yet, and every pooled task drains the parked runs when it is done.
// Parking under parkMu orders it before those drains. schedule reports
// false only when the pool is closed.
func (e *Engine) schedule(id Identity, trigger string) bool {
	e.parkMu.Lock()
	defer e.parkMu.Unlock()

	if e.pool.TrySubmit(e.task(id, trigger)) {
		triggersTotal.WithLabelValues(trigger, resultAdmitted).Inc()
		return true
	}
	if e.pool.Closed() {
		return false
	}
	e.parked = append(e.parked, parkedRun{id: id, trigger: trigger})
	triggersTotal.WithLabelValues(trigger, resultParked).Inc()
	e.logger.Debug("achievement run parked",
		slog.String("user", id.Username),
		slog.String("trigger", trigger),
		slog.Int("parked", len(e.parked)))
	return true
}

func (e *Engine) reject(id Identity, trigger string, err error) error {
	dropped := e.gate.Drop(id.Username)
	triggersTotal.WithLabelValues(trigger, resultRejected).Inc()
	e.logger.Warn("achievement run not scheduled",
		slog.String("user", id.Username),
		slog.String("trigger", trigger),
		slog.Any("dropped", dropped),
		slog.Any("error", err))
	return fmt.Errorf("schedule evaluation: %w", err)
}

func (e *Engine) popParked() (parkedRun, bool) {
	e.parkMu.Lock()
	defer e.parkMu.Unlock()
	if len(e.parked) == 0 {
		return parkedRun{}, false
	}
	r := e.parked[0]
	e.parked = e.parked[1:]
	return r, true
}

// task is the unit of work handed to the pool: one user's runs, followed
// by every run parked in the meantime.
func (e *Engine) task(id Identity, trigger string) func() {
	return func() {
		e.run(id, trigger)
		for {
			r, ok := e.popParked()
			if !ok {
				return
			}
			e.run(r.id, r.trigger)
		}
	}
}

// run evaluates trigger and then every trigger that queued up meanwhile.
// Follow-up runs go back to the pool; when it is full they continue here.
func (e *Engine) run(id Identity, trigger string) {
	for {
		next, more := e.execute(id, trigger)
		if !more {
			return
		}
		if e.pool.TrySubmit(e.task(id, next)) {
			return
		}
		trigger = next
	}
}

// execute performs one sweep and always releases the gate, even if the
// sweep fails or panics.
func (e *Engine) execute(id Identity, trigger string) (next string, more bool) {
	defer func() {
		if r := recover(); r != nil {
			e.report(id, trigger, fmt.Errorf("evaluation panicked: %v", r))
		}
		next, more = e.gate.Release(id.Username)
	}()

	if err := e.sweep(context.Background(), id, trigger); err != nil {
		e.report(id, trigger, err)
	}
	return "", false
}

func (e *Engine) sweep(ctx context.Context, id Identity, trigger string) error {
	start := time.Now()

	snap, err := e.snapshots.Build(ctx, id)
	if err != nil {
		runsTotal.WithLabelValues(resultAborted).Inc()
		return err
	}
	snap.CatalogSize = e.catalog.Len()

	unlocked := 0
	for _, def := range e.catalog.Candidates(snap.Completed, trigger) {
		if e.tryUnlock(ctx, snap, def) {
			unlocked++
		}
	}

	if meta, ok := e.catalog.Meta(); ok && !snap.Completed[meta.ID] && (unlocked > 0 || trigger == TriggerAll) {
		if e.tryUnlock(ctx, snap, meta) {
			unlocked++
		}
	}

	runsTotal.WithLabelValues(resultOK).Inc()
	runDuration.Observe(time.Since(start).Seconds())
	e.logger.Debug("achievement sweep finished",
		slog.String("user", id.Username),
		slog.String("trigger", trigger),
		slog.Int("unlocked", unlocked),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// tryUnlock evaluates def and, if it holds, records and announces the
// unlock. Rule failures skip only this achievement.
func (e *Engine) tryUnlock(ctx context.Context, snap *Snapshot, def Definition) bool {
	ok, err := e.evaluate(ctx, def, snap)
	if err != nil {
		ruleErrorsTotal.WithLabelValues(strconv.Itoa(def.ID)).Inc()
		e.logger.Warn("skipping achievement rule",
			slog.String("user", snap.Username),
			slog.Int("achievement_id", def.ID),
			slog.Any("error", err))
		return false
	}
	if !ok {
		return false
	}

	if err := e.unlocks.RecordUnlock(ctx, snap.Username, def.ID, e.now()); err != nil {
		e.logger.Error("recording unlock failed",
			slog.String("user", snap.Username),
			slog.Int("achievement_id", def.ID),
			slog.Any("error", err))
		return false
	}
	snap.Completed[def.ID] = true
	unlocksTotal.WithLabelValues(strconv.Itoa(def.ID)).Inc()

	e.notifier.Notify(ctx, snap.Username, KindAchievementUnlocked,
		publicView(def, true, e.stats.Frequency(ctx, def.ID)))
	e.logger.Info("achievement unlocked",
		slog.String("user", snap.Username),
		slog.Int("achievement_id", def.ID),
		slog.String("name", def.Name))
	return true
}

func (e *Engine) evaluate(ctx context.Context, def Definition, snap *Snapshot) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%w: rule panicked: %v", ErrMalformedInput, r)
		}
	}()

	rule := e.rules[def.ID]
	if rule == nil {
		return false, fmt.Errorf("%w: achievement %d has no rule", ErrConfiguration, def.ID)
	}
	return rule(ctx, snap)
}

func (e *Engine) report(id Identity, trigger string, err error) {
	runErr := RunError{Username: id.Username, Trigger: trigger, Err: err}
	e.logger.Error("achievement run failed",
		slog.String("user", id.Username),
		slog.String("trigger", trigger),
		slog.Any("error", err))

	select {
	case e.errs <- runErr:
	default:
	}
}

// PublicAchievements returns every achievement with the user's completion
// state, read from persisted unlocks. Runs in flight are not awaited.
func (e *Engine) PublicAchievements(ctx context.Context, username string) ([]PublicAchievement, error) {
	completed, err := e.unlocks.CompletedIDs(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: completed achievements: %v", ErrCollaboratorUnavailable, err)
	}

	freq, err := e.stats.Frequencies(ctx)
	if err != nil {
		e.logger.Warn("achievement frequencies unavailable", slog.Any("error", err))
	}

	defs := e.catalog.All()
	out := make([]PublicAchievement, 0, len(defs))
	for _, d := range defs {
		out = append(out, publicView(d, completed[d.ID], freq[d.ID]))
	}
	return out, nil
}

// publicView hides the name and description of hidden achievements until
// they are completed.
func publicView(d Definition, completed bool, frequency float64) PublicAchievement {
	v := PublicAchievement{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.OpenDescription,
		Completed:   completed,
		Frequency:   frequency,
	}
	switch {
	case completed:
		v.Description = d.CompletedDescription
	case d.Hidden:
		v.Name, v.Description = "???", "???"
	}
	return v
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, string, string, any) {}
