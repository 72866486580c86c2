package notify

import (
	"fmt"

	"github.com/appetiteclub/serving/services/serving/internal/alerts"
	"github.com/appetiteclub/serving/services/serving/internal/serving"
	"github.com/aquamarinepk/aqm"
)

// Sink delivers user-facing signals. Failures are expected, e.g. a browser
// refusing autoplay, and never reach the caller of the Bridge.
type Sink interface {
	PlaySound() error
	ShowNotification(title, body string) error
}

// Bridge turns alerts and lifecycle events into sound plus notification.
type Bridge struct {
	sink   Sink
	logger aqm.Logger
}

func NewBridge(sink Sink, logger aqm.Logger) *Bridge {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Bridge{sink: sink, logger: logger}
}

func (b *Bridge) AlertRaised(a alerts.Alert) {
	b.Event(a.Message, a.Details)
}

func (b *Bridge) GuestsArrived(g *serving.Group) {
	if g == nil {
		return
	}
	body := fmt.Sprintf("%d khách", g.GuestCount)
	if g.Location != "" {
		body = fmt.Sprintf("%s, %s", g.Location, body)
	}
	b.Event("Khách đã đến: "+g.Name, body)
}

func (b *Bridge) Event(title, body string) {
	if b.sink == nil {
		return
	}
	if err := b.sink.PlaySound(); err != nil {
		b.logger.Debug("cannot play notification sound", "error", err)
	}
	if err := b.sink.ShowNotification(title, body); err != nil {
		b.logger.Debug("cannot show notification", "title", title, "error", err)
	}
}
