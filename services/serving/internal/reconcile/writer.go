package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/appetiteclub/serving/pkg"
	"github.com/appetiteclub/serving/pkg/event"
	"github.com/appetiteclub/serving/services/serving/internal/alerts"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

const (
	defaultQueueSize    = 256
	defaultWriteTimeout = 10 * time.Second
)

type jobKind int

const (
	jobSaveGroup jobKind = iota
	jobDeleteGroup
	jobDismiss
)

type job struct {
	kind        jobKind
	before      *serving.Group
	after       *serving.Group
	dismissedID string
}

// Writer persists optimistic local changes in the background and announces
// each successful write on the change feed. Failed writes are logged; the
// local state that caused them is left as it is.
type Writer struct {
	groups    serving.GroupRepo
	dismissed alerts.DismissedStore
	publisher events.Publisher
	logger    aqm.Logger
	source    string
	timeout   time.Duration
	now       func() time.Time

	queue   chan job
	pending atomic.Int64
	cancel  context.CancelFunc
	stopped <-chan struct{}
	done    chan struct{}
}

func NewWriter(groups serving.GroupRepo, dismissed alerts.DismissedStore, publisher events.Publisher, logger aqm.Logger) *Writer {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Writer{
		groups:    groups,
		dismissed: dismissed,
		publisher: publisher,
		logger:    logger,
		source:    aqm.GenerateNewID().String(),
		timeout:   defaultWriteTimeout,
		now:       time.Now,
		queue:     make(chan job, defaultQueueSize),
	}
}

// Source identifies the events published by this instance.
func (w *Writer) Source() string {
	return w.source
}

// Pending is the number of writes queued or in flight.
func (w *Writer) Pending() int64 {
	return w.pending.Load()
}

func (w *Writer) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.stopped = runCtx.Done()
	w.done = make(chan struct{})

	w.logger.Info("starting persistence writer", "source", w.source)
	go w.run(runCtx)
	return nil
}

// Stop waits for queued writes to finish or for ctx to expire.
func (w *Writer) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Error("persistence writer stopped with pending writes", "pending", w.Pending())
		return ctx.Err()
	}
}

func (w *Writer) Save(before, after *serving.Group) {
	w.enqueue(job{kind: jobSaveGroup, before: before.Clone(), after: after.Clone()})
}

func (w *Writer) Delete(group *serving.Group) {
	w.enqueue(job{kind: jobDeleteGroup, before: group.Clone()})
}

func (w *Writer) SaveDismissed(id string) {
	w.enqueue(job{kind: jobDismiss, dismissedID: id})
}

// enqueue blocks while the queue is full so that writes from one caller
// reach the database in the order they were made. Once the writer is
// stopping the job is written inline.
func (w *Writer) enqueue(j job) {
	w.pending.Add(1)
	select {
	case w.queue <- j:
		return
	default:
	}

	w.logger.Info("write queue full, waiting for a slot", "pending", w.Pending())
	select {
	case w.queue <- j:
	case <-w.stopped:
		w.handle(j)
	}
}

func (w *Writer) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case j := <-w.queue:
			w.handle(j)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		select {
		case j := <-w.queue:
			w.handle(j)
		default:
			return
		}
	}
}

func (w *Writer) handle(j job) {
	defer w.pending.Add(-1)

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	var (
		evt event.ChangeEvent
		err error
	)
	switch j.kind {
	case jobSaveGroup:
		evt, err = w.saveGroup(ctx, j.before, j.after)
	case jobDeleteGroup:
		evt, err = w.deleteGroup(ctx, j.before)
	case jobDismiss:
		evt, err = w.saveDismissed(ctx, j.dismissedID)
	default:
		err = fmt.Errorf("unknown write job %d", j.kind)
	}
	if err != nil {
		w.logger.Error("background write failed", "table", evt.Table, "record_id", evt.RecordID, "error", err)
		return
	}

	w.publish(ctx, evt)
}

func (w *Writer) saveGroup(ctx context.Context, before, after *serving.Group) (event.ChangeEvent, error) {
	evt := event.ChangeEvent{
		Table:     pkg.TableServingGroups,
		EventType: event.ChangeUpdate,
		RecordID:  after.ID.String(),
	}
	if before == nil {
		evt.EventType = event.ChangeInsert
	}
	if w.groups == nil {
		return evt, fmt.Errorf("group repo not configured")
	}
	if err := w.groups.Upsert(ctx, after); err != nil {
		return evt, fmt.Errorf("upsert serving group: %w", err)
	}

	var err error
	if before != nil {
		if evt.Old, err = json.Marshal(before); err != nil {
			return evt, fmt.Errorf("encode old row: %w", err)
		}
	}
	if evt.New, err = json.Marshal(after); err != nil {
		return evt, fmt.Errorf("encode new row: %w", err)
	}
	return evt, nil
}

func (w *Writer) deleteGroup(ctx context.Context, group *serving.Group) (event.ChangeEvent, error) {
	evt := event.ChangeEvent{
		Table:     pkg.TableServingGroups,
		EventType: event.ChangeDelete,
		RecordID:  group.ID.String(),
	}
	if w.groups == nil {
		return evt, fmt.Errorf("group repo not configured")
	}
	if err := w.groups.Delete(ctx, group.ID); err != nil {
		return evt, fmt.Errorf("delete serving group: %w", err)
	}

	old, err := json.Marshal(group)
	if err != nil {
		return evt, fmt.Errorf("encode old row: %w", err)
	}
	evt.Old = old
	return evt, nil
}

func (w *Writer) saveDismissed(ctx context.Context, id string) (event.ChangeEvent, error) {
	evt := event.ChangeEvent{
		Table:     pkg.TableDismissedAlerts,
		EventType: event.ChangeInsert,
		RecordID:  id,
	}
	if w.dismissed == nil {
		return evt, fmt.Errorf("dismissed store not configured")
	}
	if err := w.dismissed.Add(ctx, id); err != nil {
		return evt, fmt.Errorf("add dismissed alert: %w", err)
	}
	return evt, nil
}

func (w *Writer) publish(ctx context.Context, evt event.ChangeEvent) {
	if w.publisher == nil {
		return
	}
	evt.Source = w.source
	evt.OccurredAt = w.now()

	data, err := json.Marshal(evt)
	if err != nil {
		w.logger.Error("cannot encode change event", "error", err)
		return
	}
	if err := w.publisher.Publish(ctx, pkg.ServingChangesTopic, data); err != nil {
		w.logger.Error("cannot publish change event", "table", evt.Table, "record_id", evt.RecordID, "error", err)
		return
	}
	w.logger.Debug("change event published", "table", evt.Table, "event_type", evt.EventType, "record_id", evt.RecordID)
}
