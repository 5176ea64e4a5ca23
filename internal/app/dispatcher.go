package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/hive-corporation/f2b-notifier/internal/adapter/metrics"
	"github.com/hive-corporation/f2b-notifier/internal/core/domain"
	"github.com/hive-corporation/f2b-notifier/internal/core/ports"
	"github.com/hive-corporation/f2b-notifier/internal/logger"
)

// Result is what one run produced. Callers inspect it instead of parsing logs.
type Result struct {
	EventID    string
	Message    string
	Enrichment domain.Enrichment
	Delivery   domain.Delivery
}

type Dispatcher struct {
	geo      ports.Geolocator
	notifier ports.Notifier
	dryRun   bool
	out      io.Writer
}

// NewDispatcher wires the lookup and delivery steps. With dryRun set, the message is
// written to out instead of being posted.
func NewDispatcher(geo ports.Geolocator, notifier ports.Notifier, dryRun bool, out io.Writer) *Dispatcher {
	return &Dispatcher{
		geo:      geo,
		notifier: notifier,
		dryRun:   dryRun,
		out:      out,
	}
}

// Dispatch turns a validated request into a message and hands it to the notifier.
// Every failure past this point is logged and reflected in Result; none is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.ActionRequest) Result {
	res := Result{
		EventID:    uuid.NewString(),
		Enrichment: domain.Unenrich(nil),
	}
	metrics.RecordEvent(string(req.Action))
	logger.Info("📥 [%s] %s jail=%s ip=%s failures=%d", res.EventID, req.Action, req.Jail, req.IP, req.Failures)

	if req.Action.NeedsEnrichment() {
		res.Enrichment = d.geo.Locate(ctx, req.IP)
		metrics.RecordEnrichment(string(res.Enrichment.Outcome))
		if res.Enrichment.Err != nil {
			logger.Error("❌ [%s] %s lookup failed, sending without country: %v", res.EventID, d.geo.Name(), res.Enrichment.Err)
		}
	}

	res.Message = domain.Message(req, res.Enrichment)

	if d.dryRun {
		fmt.Fprintln(d.out, res.Message)
		res.Delivery = domain.Delivery{Outcome: domain.Skipped}
		metrics.RecordDelivery(string(res.Delivery.Outcome))
		logger.Info("🧪 [%s] dry run, message not sent", res.EventID)
		return res
	}

	timer := metrics.StartTimer()
	res.Delivery = d.notifier.Notify(ctx, req.WebhookPath, res.Message)
	timer.ObserveDuration()
	metrics.RecordDelivery(string(res.Delivery.Outcome))

	if res.Delivery.Outcome == domain.Sent {
		logger.Info("✅ [%s] notification sent: %s", res.EventID, res.Message)
	} else {
		logger.Error("❌ [%s] failed to notify Slack: %v", res.EventID, res.Delivery.Err)
	}

	return res
}
