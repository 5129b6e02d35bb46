// Package event delivers domain events to the streaming backend behind a
// circuit breaker.
package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"ServiceDesk/internal/conf"
	"ServiceDesk/internal/model"
	pkglog "ServiceDesk/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is event providers.
var ProviderSet = wire.NewSet(NewMetrics, NewBreakerFromConfig, NewPublisher)

// Sender pushes one serialized event to a named channel of the backend and
// returns the backend message id.
type Sender interface {
	Send(ctx context.Context, channel string, payload []byte) (string, error)
}

// Outcome is the result class of a publish attempt.
type Outcome int

const (
	// Delivered means the backend accepted the event.
	Delivered Outcome = iota
	// Skipped means the breaker was open and the backend was not contacted.
	Skipped
	// Failed means serialization or delivery failed.
	Failed
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reasons reported with Skipped and Failed results.
const (
	ReasonCircuitOpen   = "circuit_open"
	ReasonTimeout       = "timeout"
	ReasonBackend       = "backend_unavailable"
	ReasonSerialization = "serialization_error"
)

// PublishResult describes what happened to one event.
type PublishResult struct {
	Outcome   Outcome
	Reason    string
	MessageID string
	Err       error
}

// Publisher serializes domain events and sends them through the breaker.
type Publisher struct {
	sender            Sender
	breaker           *Breaker
	timeout           time.Duration
	completionChannel string
	domainChannel     string
	metrics           *Metrics
	log               *pkglog.LogHelper
	marshal           func(v any) ([]byte, error)
}

// NewPublisher creates a Publisher.
func NewPublisher(c *conf.Events, sender Sender, breaker *Breaker, metrics *Metrics, logger log.Logger) *Publisher {
	return &Publisher{
		sender:            sender,
		breaker:           breaker,
		timeout:           c.DeliveryTimeout,
		completionChannel: c.CompletionStream,
		domainChannel:     c.DomainStream,
		metrics:           metrics,
		log:               pkglog.NewLogHelper(log.With(logger, "module", "event/publisher")),
		marshal:           json.Marshal,
	}
}

// NewBreakerFromConfig builds the process-wide breaker and reports its
// transitions to the log and to metrics.
func NewBreakerFromConfig(c *conf.Events, metrics *Metrics, logger log.Logger) *Breaker {
	helper := pkglog.NewLogHelper(log.With(logger, "module", "event/breaker"))
	metrics.observeTransition(Closed)
	return NewBreaker(
		WithThreshold(c.FailureThreshold),
		WithCooldown(c.Cooldown),
		WithOnStateChange(func(from, to State, snap Snapshot) {
			metrics.observeTransition(to)
			helper.Breaker(from.String(), to.String(), "failures", snap.Failures, "opened_at", snap.OpenedAt)
		}),
	)
}

// Breaker exposes the breaker for status queries.
func (p *Publisher) Breaker() *Breaker {
	return p.breaker
}

// Publish delivers evt to the backend. It never returns an error: the outcome
// is reported in the result and logged. The send runs with its own deadline
// and is not cancelled when ctx is.
func (p *Publisher) Publish(ctx context.Context, evt model.Event) PublishResult {
	payload, err := p.marshal(evt)
	if err != nil {
		return p.finish(evt, PublishResult{
			Outcome: Failed,
			Reason:  ReasonSerialization,
			Err:     fmt.Errorf("%w: %v", ErrSerialization, err),
		})
	}

	if !p.breaker.Allow() {
		return p.finish(evt, PublishResult{Outcome: Skipped, Reason: ReasonCircuitOpen, Err: ErrCircuitOpen})
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	start := time.Now()
	id, err := p.sender.Send(sendCtx, p.channelFor(evt.Type), payload)
	if err != nil {
		err = classifySendError(err)
		if countsAsFailure(err) {
			p.breaker.RecordResult(false)
		}
		p.observeLatency(Failed, start)

		reason := ReasonBackend
		if errors.Is(err, ErrTimeout) {
			reason = ReasonTimeout
		}
		return p.finish(evt, PublishResult{Outcome: Failed, Reason: reason, Err: err})
	}

	p.breaker.RecordResult(true)
	p.observeLatency(Delivered, start)
	return p.finish(evt, PublishResult{Outcome: Delivered, MessageID: id})
}

func (p *Publisher) channelFor(eventType string) string {
	if eventType == model.EventWorkOrderCompleted {
		return p.completionChannel
	}
	return p.domainChannel
}

func classifySendError(err error) error {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrBackendUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}

func (p *Publisher) observeLatency(outcome Outcome, start time.Time) {
	if p.metrics != nil {
		p.metrics.PublishLatency.WithLabelValues(outcome.String()).Observe(time.Since(start).Seconds())
	}
}

func (p *Publisher) finish(evt model.Event, res PublishResult) PublishResult {
	if p.metrics != nil {
		p.metrics.PublishTotal.WithLabelValues(evt.Type, res.Outcome.String()).Inc()
	}

	switch {
	case res.Outcome == Delivered:
		p.log.Event(log.LevelInfo, evt.Type, evt.EntityID, res.Outcome.String(), evt.Payload, "message_id", res.MessageID)
	case res.Outcome == Skipped:
		p.log.Event(log.LevelInfo, evt.Type, evt.EntityID, res.Outcome.String(), evt.Payload, "reason", res.Reason)
	case res.Reason == ReasonSerialization:
		p.log.Event(log.LevelError, evt.Type, evt.EntityID, res.Outcome.String(), evt.Payload, "reason", res.Reason, "error", res.Err.Error())
	default:
		p.log.Event(log.LevelWarn, evt.Type, evt.EntityID, res.Outcome.String(), evt.Payload, "reason", res.Reason, "error", res.Err.Error())
	}
	return res
}
