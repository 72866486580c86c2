package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/serving/pkg"
	"github.com/appetiteclub/serving/pkg/event"
	"github.com/appetiteclub/serving/services/serving/internal/alerts"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

const (
	defaultReloadTimeout = 15 * time.Second
	dateLayout           = "2006-01-02"
)

type GroupReplacer interface {
	Replace(groups []*serving.Group)
}

type AlertState interface {
	SetAttendance(logs []alerts.AttendanceLog)
	SetDismissed(ids []string)
}

type ArrivalNotifier interface {
	GuestsArrived(g *serving.Group)
}

type ChangeListener interface {
	Changed(evt event.ChangeEvent)
}

type Sources struct {
	Groups     serving.GroupRepo
	Attendance alerts.AttendanceRepo
	Dismissed  alerts.DismissedStore
}

type ReconcilerDeps struct {
	Subscriber events.Subscriber
	Sources    Sources
	Store      GroupReplacer
	Alerts     AlertState
	Arrivals   ArrivalNotifier
	Changes    ChangeListener
}

// Reconciler treats every change feed event as a cue to rebuild local state
// from the durable store. Reload requests are coalesced: at most one reload
// runs and at most one more waits behind it.
type Reconciler struct {
	deps    ReconcilerDeps
	logger  aqm.Logger
	timeout time.Duration
	now     func() time.Time

	reload chan struct{}

	mu         sync.RWMutex
	lastReload time.Time
	lastErr    error

	cancel context.CancelFunc
	done   chan struct{}
}

func NewReconciler(deps ReconcilerDeps, logger aqm.Logger) *Reconciler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Reconciler{
		deps:    deps,
		logger:  logger,
		timeout: defaultReloadTimeout,
		now:     time.Now,
		reload:  make(chan struct{}, 1),
	}
}

func (r *Reconciler) Start(ctx context.Context) error {
	r.logger.Info("starting change feed reconciler", "topic", pkg.ServingChangesTopic)

	if err := r.Reload(ctx); err != nil {
		r.logger.Info("initial reload incomplete", "error", err)
	}

	if r.deps.Subscriber == nil {
		return fmt.Errorf("change feed subscriber not configured")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(runCtx)

	return r.deps.Subscriber.Subscribe(runCtx, pkg.ServingChangesTopic, r.handleEvent)
}

func (r *Reconciler) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestReload schedules a full reload unless one is already waiting.
func (r *Reconciler) RequestReload() {
	select {
	case r.reload <- struct{}{}:
	default:
	}
}

func (r *Reconciler) loop(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.reload:
			if err := r.Reload(ctx); err != nil {
				r.logger.Error("reload failed", "error", err)
			}
		}
	}
}

func (r *Reconciler) handleEvent(ctx context.Context, msg []byte) error {
	defer r.RequestReload()

	var evt event.ChangeEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		r.logger.Info("invalid change event", "error", err)
		return nil
	}

	r.logger.Debug("change event received", "table", evt.Table, "event_type", evt.EventType, "record_id", evt.RecordID)

	if g, ok := arrival(evt); ok && r.deps.Arrivals != nil {
		r.deps.Arrivals.GuestsArrived(g)
	}
	if r.deps.Changes != nil {
		r.deps.Changes.Changed(evt)
	}
	return nil
}

// arrival reports the group whose start time went from unset to set.
func arrival(evt event.ChangeEvent) (*serving.Group, bool) {
	if evt.Table != pkg.TableServingGroups || evt.EventType != event.ChangeUpdate {
		return nil, false
	}
	if len(evt.Old) == 0 || len(evt.New) == 0 {
		return nil, false
	}

	var before, after serving.Group
	if err := json.Unmarshal(evt.Old, &before); err != nil {
		return nil, false
	}
	if err := json.Unmarshal(evt.New, &after); err != nil {
		return nil, false
	}
	if before.HasArrived() || !after.HasArrived() {
		return nil, false
	}
	return &after, true
}

// Reload fetches groups, today's attendance and dismissed ids and replaces
// local state with them. A source that fails leaves its part of the local
// state untouched.
func (r *Reconciler) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var errs []error
	src := r.deps.Sources

	if src.Groups != nil && r.deps.Store != nil {
		groups, err := src.Groups.List(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("list serving groups: %w", err))
		} else {
			r.deps.Store.Replace(groups)
		}
	}

	if src.Attendance != nil && r.deps.Alerts != nil {
		logs, err := src.Attendance.ListByDate(ctx, r.now().Format(dateLayout))
		if err != nil {
			errs = append(errs, fmt.Errorf("list attendance logs: %w", err))
		} else {
			r.deps.Alerts.SetAttendance(logs)
		}
	}

	if src.Dismissed != nil && r.deps.Alerts != nil {
		ids, err := src.Dismissed.List(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("list dismissed alerts: %w", err))
		} else {
			r.deps.Alerts.SetDismissed(ids)
		}
	}

	err := errors.Join(errs...)

	r.mu.Lock()
	r.lastErr = err
	if err == nil {
		r.lastReload = r.now()
	}
	r.mu.Unlock()

	if err == nil {
		r.logger.Debug("local state reloaded")
	}
	return err
}

// LastReload returns the time of the last fully successful reload and the
// error of the most recent attempt.
func (r *Reconciler) LastReload() (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastReload, r.lastErr
}
