package compliance

import (
	"context"
	"sync"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	awspkg "checkout-service/pkg/aws"

	"go.uber.org/zap"
)

// Dispatcher drains the compliance outbox: every committed sale and
// status change eventually reaches the sink, surviving sink outages
// through retry. Rows are never dropped; failures only increment the
// attempt counter.
type Dispatcher struct {
	outbox      repository.OutboxRepository
	publisher   Publisher
	sns         awspkg.SNSPublisher // optional best-effort mirror
	snsTopicArn string
	interval    time.Duration
	batchSize   int
	logger      *zap.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewDispatcher creates a dispatcher polling at the given interval.
// sns may be nil.
func NewDispatcher(outbox repository.OutboxRepository, publisher Publisher, sns awspkg.SNSPublisher, snsTopicArn string, interval time.Duration, batchSize int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		outbox:      outbox,
		publisher:   publisher,
		sns:         sns,
		snsTopicArn: snsTopicArn,
		interval:    interval,
		batchSize:   batchSize,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

// Start launches the polling loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), d.interval)
				if _, err := d.DispatchOnce(ctx); err != nil {
					d.logger.Error("outbox poll failed", zap.Error(err))
				}
				cancel()
			case <-d.stop:
				return
			}
		}
	}()
}

// Stop halts the polling loop and waits for it to finish.
func (d *Dispatcher) Stop() {
	close(d.stop)
	d.wg.Wait()
}

// DispatchOnce publishes one batch of pending events and returns how
// many were delivered.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	pending, err := d.outbox.FetchPending(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, event := range pending {
		if err := d.publisher.Publish(ctx, eventKey(event), event.Payload); err != nil {
			// A missing compliance record is a reportable gap: keep the
			// row pending and surface the failure loudly.
			d.logger.Warn("compliance publish failed, will retry",
				zap.Int64("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Int("attempts", event.Attempts+1),
				zap.Error(err),
			)
			if markErr := d.outbox.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				d.logger.Error("failed to record outbox failure", zap.Int64("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := d.outbox.MarkSent(ctx, event.ID); err != nil {
			// The sink has the event; worst case the next poll
			// republishes it. Duplicate delivery beats a lost record.
			d.logger.Error("failed to mark outbox row sent", zap.Int64("outbox_id", event.ID), zap.Error(err))
			continue
		}
		sent++

		d.mirrorToSNS(ctx, event)
	}
	return sent, nil
}

// mirrorToSNS forwards sale events to SNS when configured. Best-effort:
// the Kafka record is the one that counts.
func (d *Dispatcher) mirrorToSNS(ctx context.Context, event models.ComplianceOutbox) {
	if d.sns == nil || d.snsTopicArn == "" || event.EventType != models.EventSale {
		return
	}
	if err := d.sns.Publish(ctx, d.snsTopicArn, event.Payload); err != nil {
		d.logger.Warn("sns mirror publish failed",
			zap.Int64("outbox_id", event.ID),
			zap.Error(err),
		)
	}
}

func eventKey(event models.ComplianceOutbox) string {
	if event.OrderID != nil {
		return event.OrderID.String()
	}
	return event.DispensaryID.String()
}
