package alerts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/appetiteclub/serving/pkg/enums/severity"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/aquamarinepk/aqm"
)

const (
	DefaultThreshold = 15
	DefaultInterval  = 30 * time.Second

	minutesPerDay = 24 * 60
	dateLayout    = "2006-01-02"
)

type Config struct {
	// Threshold is the number of minutes after arrival before unserved
	// items raise an alert.
	Threshold int
	Interval  time.Duration
}

// Engine recomputes the whole alert set on a timer.
type Engine struct {
	groups    GroupSource
	persister DismissPersister
	notifier  Notifier
	logger    aqm.Logger
	threshold int
	interval  time.Duration
	now       func() time.Time

	mu         sync.RWMutex
	current    []Alert
	currentIDs map[string]struct{}
	attendance []AttendanceLog
	dismissed  map[string]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func NewEngine(groups GroupSource, persister DismissPersister, notifier Notifier, cfg Config, logger aqm.Logger) *Engine {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Engine{
		groups:     groups,
		persister:  persister,
		notifier:   notifier,
		logger:     logger,
		threshold:  cfg.Threshold,
		interval:   cfg.Interval,
		now:        time.Now,
		current:    []Alert{},
		currentIDs: map[string]struct{}{},
		dismissed:  map[string]struct{}{},
	}
}

func (e *Engine) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	e.logger.Info("starting alert engine", "interval", e.interval.String(), "threshold_minutes", e.threshold)

	go func() {
		defer close(e.done)
		e.Run(runCtx)
	}()
	return nil
}

func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel == nil {
		return nil
	}
	e.cancel()
	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Run ticks until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.Tick(e.now())

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(e.now())
		}
	}
}

// Tick derives the alert set for the given instant. The published list is
// swapped only when the set of ids differs from the previous tick. Ids that
// were absent last tick and are not dismissed are sent to the notifier.
func (e *Engine) Tick(now time.Time) []Alert {
	var groups []*serving.Group
	if e.groups != nil {
		groups = e.groups.Snapshot()
	}

	e.mu.Lock()
	next := e.derive(groups, e.attendance, now)

	var raised []Alert
	if !sameIDs(next, e.currentIDs) {
		nextIDs := make(map[string]struct{}, len(next))
		for _, a := range next {
			nextIDs[a.ID] = struct{}{}
			if _, seen := e.currentIDs[a.ID]; seen {
				continue
			}
			if _, dismissed := e.dismissed[a.ID]; dismissed {
				continue
			}
			raised = append(raised, a)
		}
		e.current = keepTimestamps(next, e.current)
		e.currentIDs = nextIDs
	}
	published := e.current
	e.mu.Unlock()

	for _, a := range raised {
		e.logger.Info("alert raised", "alert_id", a.ID, "severity", a.Severity)
		if e.notifier != nil {
			e.notifier.AlertRaised(a)
		}
	}

	return published
}

func (e *Engine) derive(groups []*serving.Group, logs []AttendanceLog, now time.Time) []Alert {
	var out []Alert

	for _, g := range groups {
		if !g.IsActive() || !g.HasArrived() {
			continue
		}
		elapsed := elapsedMinutes(*g.StartTime, now)
		if elapsed < e.threshold {
			continue
		}
		pending := g.Pending()
		if len(pending) == 0 {
			continue
		}

		id := g.ID
		out = append(out, Alert{
			ID:        ServingAlertID(g.ID),
			Type:      TypeServingDelay,
			Message:   fmt.Sprintf("%s: khách đã ngồi %d phút, còn %d món chưa lên đủ", g.Name, elapsed, len(pending)),
			Details:   deficitDetails(pending),
			Severity:  severity.Levels.High.Code(),
			Timestamp: now,
			GroupID:   &id,
		})
	}

	today := now.Format(dateLayout)
	for _, log := range logs {
		if log.Status != AttendanceLate || log.Date != today {
			continue
		}
		out = append(out, Alert{
			ID:        LateAlertID(log.ID),
			Type:      TypeLateAttendance,
			Message:   fmt.Sprintf("%s đi làm trễ", log.EmployeeName),
			Details:   lateDetails(log),
			Severity:  severity.Levels.Medium.Code(),
			Timestamp: now,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := severityRank(out[i].Severity), severityRank(out[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Active returns the published alerts that have not been dismissed.
func (e *Engine) Active() []Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Alert, 0, len(e.current))
	for _, a := range e.current {
		if _, dismissed := e.dismissed[a.ID]; dismissed {
			continue
		}
		out = append(out, a)
	}
	return out
}

// History returns dismissed alerts whose condition still holds, plus every
// dismissed id.
func (e *Engine) History() History {
	e.mu.RLock()
	defer e.mu.RUnlock()

	h := History{Alerts: []Alert{}, DismissedIDs: make([]string, 0, len(e.dismissed))}
	for _, a := range e.current {
		if _, dismissed := e.dismissed[a.ID]; dismissed {
			h.Alerts = append(h.Alerts, a)
		}
	}
	for id := range e.dismissed {
		h.DismissedIDs = append(h.DismissedIDs, id)
	}
	sort.Strings(h.DismissedIDs)
	return h
}

// Dismiss acknowledges an alert id locally and hands it to the persister.
func (e *Engine) Dismiss(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidAlertID
	}

	e.mu.Lock()
	_, already := e.dismissed[id]
	e.dismissed[id] = struct{}{}
	e.mu.Unlock()

	if already {
		return nil
	}

	e.logger.Info("alert dismissed", "alert_id", id)
	if e.persister != nil {
		e.persister.SaveDismissed(id)
	}
	return nil
}

func (e *Engine) IsDismissed(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.dismissed[id]
	return ok
}

// SetDismissed replaces the dismissed set with the persisted one. Ids
// dismissed locally since the last reload are kept.
func (e *Engine) SetDismissed(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		e.dismissed[id] = struct{}{}
	}
}

// SetAttendance replaces the attendance logs scanned on each tick.
func (e *Engine) SetAttendance(logs []AttendanceLog) {
	cp := append([]AttendanceLog(nil), logs...)

	e.mu.Lock()
	e.attendance = cp
	e.mu.Unlock()
}

// elapsedMinutes compares minutes since midnight, adding a day when the
// clock has wrapped past midnight since arrival.
func elapsedMinutes(start, now time.Time) int {
	start = start.In(now.Location())
	startMin := start.Hour()*60 + start.Minute()
	nowMin := now.Hour()*60 + now.Minute()

	elapsed := nowMin - startMin
	if elapsed < 0 {
		elapsed += minutesPerDay
	}
	return elapsed
}

func deficitDetails(pending []serving.Item) string {
	parts := make([]string, 0, len(pending))
	for _, item := range pending {
		missing := item.TotalQuantity - item.ServedQuantity
		unit := item.Unit
		if unit == "" {
			unit = "phần"
		}
		parts = append(parts, fmt.Sprintf("%s: thiếu %d %s", item.Name, missing, unit))
	}
	return strings.Join(parts, "; ")
}

func lateDetails(log AttendanceLog) string {
	if log.CheckIn == nil {
		return fmt.Sprintf("Trễ %d phút", log.LateMinutes)
	}
	return fmt.Sprintf("Vào ca lúc %s, trễ %d phút", log.CheckIn.Format("15:04"), log.LateMinutes)
}

func severityRank(code string) int {
	if s := severity.ByName(code); s != nil {
		return s.Rank
	}
	return 0
}

func sameIDs(alerts []Alert, ids map[string]struct{}) bool {
	if len(alerts) != len(ids) {
		return false
	}
	for _, a := range alerts {
		if _, ok := ids[a.ID]; !ok {
			return false
		}
	}
	return true
}

// keepTimestamps carries over the first-seen time of alerts that were
// already published.
func keepTimestamps(next, prev []Alert) []Alert {
	first := make(map[string]time.Time, len(prev))
	for _, a := range prev {
		first[a.ID] = a.Timestamp
	}
	for i := range next {
		if ts, ok := first[next[i].ID]; ok {
			next[i].Timestamp = ts
		}
	}
	return next
}
