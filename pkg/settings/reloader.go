package settings

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/openolat/olat-gateway/pkg/commsutil"
	"github.com/openolat/olat-gateway/pkg/events"
)

const reloaderLogPrefix = "settings:reloader"

// Reloadable is a module whose state is derived from its properties.
type Reloadable interface {
	Module() string
	Reload(ctx context.Context) error
}

// Reloader reloads modules when another node changed their properties.
type Reloader struct {
	origin  string
	modules map[string]Reloadable
}

// NewReloader creates a Reloader for the given modules. Events from origin are ignored.
func NewReloader(origin string, modules ...Reloadable) *Reloader {
	m := make(map[string]Reloadable, len(modules))
	for _, mod := range modules {
		m[mod.Module()] = mod
	}
	return &Reloader{origin: origin, modules: m}
}

// Handle reloads the module named by event. It reports whether a reload happened.
func (r *Reloader) Handle(ctx context.Context, event *events.ModuleChangedEvent) (bool, error) {
	if event == nil || event.Origin == r.origin {
		return false, nil
	}
	mod, ok := r.modules[event.Module]
	if !ok {
		return false, nil
	}
	if err := mod.Reload(ctx); err != nil {
		return false, fmt.Errorf("%s - reload of module %s failed: %w", reloaderLogPrefix, event.Module, err)
	}
	slog.Info(fmt.Sprintf("%s - Reloaded module %s after change from %s", reloaderLogPrefix, event.Module, event.Origin))
	return true, nil
}

// Subscribe listens for change events on subject until the subscription is drained.
func (r *Reloader) Subscribe(ctx context.Context, nc *comms.Conn, subject string) (*comms.Subscription, error) {
	sub, err := nc.Subscribe(subject, func(msg *comms.Msg) {
		var event events.ModuleChangedEvent
		if err := commsutil.DecodePayload(msg.Data, &event); err != nil {
			slog.Warn(fmt.Sprintf("%s - dropping undecodable change event: %v", reloaderLogPrefix, err))
			return
		}
		if _, err := r.Handle(ctx, &event); err != nil {
			slog.Error(err.Error())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", reloaderLogPrefix, subject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s for %d modules", reloaderLogPrefix, subject, len(r.modules)))
	return sub, nil
}
