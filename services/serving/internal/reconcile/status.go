package reconcile

import (
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/nats-io/nats.go"
)

// Status is the state of the change feed link.
type Status string

const (
	StatusConnected    Status = "CONNECTED"
	StatusConnecting   Status = "CONNECTING"
	StatusDisconnected Status = "DISCONNECTED"
)

const reconnectWait = 2 * time.Second

// ConnState tracks the change feed connection from NATS callbacks.
type ConnState struct {
	mu        sync.RWMutex
	status    Status
	changedAt time.Time
	listeners []func(Status)
	logger    aqm.Logger
	now       func() time.Time
}

func NewConnState(logger aqm.Logger) *ConnState {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &ConnState{
		status:    StatusConnecting,
		changedAt: time.Now(),
		logger:    logger,
		now:       time.Now,
	}
}

func (c *ConnState) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *ConnState) ChangedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changedAt
}

// OnChange registers fn to run after every status transition.
func (c *ConnState) OnChange(fn func(Status)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	current := c.status
	c.mu.Unlock()

	fn(current)
}

func (c *ConnState) Set(s Status) {
	c.mu.Lock()
	if c.status == s {
		c.mu.Unlock()
		return
	}
	prev := c.status
	c.status = s
	c.changedAt = c.now()
	listeners := append([]func(Status){}, c.listeners...)
	c.mu.Unlock()

	c.logger.Info("change feed status changed", "from", string(prev), "to", string(s))
	for _, fn := range listeners {
		fn(s)
	}
}

// NATSOptions wires the connection callbacks into the state. The connection
// keeps retrying forever, so a dropped link reads as CONNECTING until it is
// back or the connection is closed for good.
func (c *ConnState) NATSOptions() []nats.Option {
	return []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.ConnectHandler(func(*nats.Conn) {
			c.Set(StatusConnected)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				c.logger.Error("change feed disconnected", "error", err)
			}
			c.Set(StatusConnecting)
		}),
		nats.ReconnectHandler(func(*nats.Conn) {
			c.Set(StatusConnected)
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			c.Set(StatusDisconnected)
		}),
	}
}
