// Package events provides the event sinks the registry publishes its
// notifications to. Notifications are fire-and-forget: sinks never block the
// registry, and a saturated sink drops events rather than stalling a commit.
package events

import (
	"log/slog"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
	"github.com/markeluno8-dev/AuthentiEats/metrics"
)

// LogSink writes every event to a structured logger.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink logging events at info level.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Publish logs the event.
func (s *LogSink) Publish(ev interfaces.Event) {
	s.log.Info("registry event",
		"event_id", ev.ID,
		"name", ev.Name,
		"sequence", ev.Sequence,
		"caller", ev.Caller,
		"product_id", ev.ProductID,
	)
}

// ChannelSink buffers events on a channel for an external consumer, such as
// an off-chain indexer. When the buffer is full the event is dropped and
// counted; publishing never blocks.
type ChannelSink struct {
	ch  chan interfaces.Event
	log *slog.Logger
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(size int, log *slog.Logger) *ChannelSink {
	return &ChannelSink{
		ch:  make(chan interfaces.Event, size),
		log: log,
	}
}

// Publish enqueues the event, dropping it if the buffer is full.
func (s *ChannelSink) Publish(ev interfaces.Event) {
	select {
	case s.ch <- ev:
	default:
		metrics.EventsDropped.Inc()
		s.log.Warn("event dropped, sink buffer full", "name", ev.Name, "event_id", ev.ID)
	}
}

// Events returns the consumer side of the sink.
func (s *ChannelSink) Events() <-chan interfaces.Event {
	return s.ch
}

// MultiSink fans an event out to every member sink.
type MultiSink []interfaces.EventSink

// Publish forwards the event to each sink in order.
func (m MultiSink) Publish(ev interfaces.Event) {
	for _, sink := range m {
		sink.Publish(ev)
	}
}
