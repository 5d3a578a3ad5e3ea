package events

import "context"

// EventPublisher is the interface for publishing module change events.
type EventPublisher interface {
	PublishChanged(ctx context.Context, event *ModuleChangedEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (single node without COMMS).
type NoOpPublisher struct{}

// PublishChanged is a no-op.
func (p *NoOpPublisher) PublishChanged(_ context.Context, _ *ModuleChangedEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls a callback function (for testing).
type CallbackPublisher struct {
	callback func(ctx context.Context, event *ModuleChangedEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, event *ModuleChangedEvent) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// PublishChanged calls the callback.
func (p *CallbackPublisher) PublishChanged(ctx context.Context, event *ModuleChangedEvent) error {
	return p.callback(ctx, event)
}
