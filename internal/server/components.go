package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openolat/olat-gateway/pkg/dispatcher"
	"github.com/openolat/olat-gateway/pkg/events"
	"github.com/openolat/olat-gateway/pkg/help"
	"github.com/openolat/olat-gateway/pkg/lecture"
	"github.com/openolat/olat-gateway/pkg/license"
	"github.com/openolat/olat-gateway/pkg/onlyoffice"
	"github.com/openolat/olat-gateway/pkg/seed"
	"github.com/openolat/olat-gateway/pkg/settings"
	"github.com/openolat/olat-gateway/pkg/userrequest"
)

const componentsLogPrefix = "server:components"

// Components are the loaded gateway modules shared by the HTTP front and the COMMS
// dispatcher.
type Components struct {
	Origin     string
	Decoder    *userrequest.Decoder
	Help       *help.Module
	Lecture    *lecture.Module
	OnlyOffice *onlyoffice.Module
	Licenses   license.Repository
	Reloader   *settings.Reloader
}

// ComponentsParams holds parameters for BuildComponents.
type ComponentsParams struct {
	URIPrefix string
	ManualURL string
	Store     settings.Store
	Licenses  license.Repository
	Publisher events.EventPublisher
	Metrics   *userrequest.Metrics
	// Seed is applied to Store before the modules load; nil skips seeding.
	Seed *seed.File
	// Origin identifies this node in change events; empty generates one.
	Origin string
}

// BuildComponents seeds the store, initializes license types and loads every module.
func BuildComponents(ctx context.Context, params ComponentsParams) (*Components, error) {
	origin := params.Origin
	if origin == "" {
		origin = settings.NewNodeID()
	}

	if params.Seed != nil {
		n, err := seed.Apply(ctx, params.Store, params.Seed)
		if err != nil {
			return nil, fmt.Errorf("%s - failed to apply seed %s: %w", componentsLogPrefix, params.Seed.Name, err)
		}
		slog.Info(fmt.Sprintf("%s - Seed %s wrote %d properties", componentsLogPrefix, params.Seed.Name, n))
	}

	if params.Licenses != nil {
		if _, err := license.InitPredefined(ctx, params.Licenses); err != nil {
			return nil, fmt.Errorf("%s - failed to init license types: %w", componentsLogPrefix, err)
		}
	}

	newProps := func(module string) *settings.Properties {
		return settings.NewProperties(settings.PropertiesParams{
			Module:    module,
			Store:     params.Store,
			Publisher: params.Publisher,
			Origin:    origin,
		})
	}

	helpModule := help.NewModule(newProps(help.ModuleName), help.NewRegistry(help.DefaultProviders(params.ManualURL)...))
	lectureModule := lecture.NewModule(newProps(lecture.ModuleName), newProps(lecture.UserToolsModule))
	onlyofficeModule := onlyoffice.NewModule(newProps(onlyoffice.ModuleName))

	loaders := []interface {
		Module() string
		Load(ctx context.Context) error
	}{helpModule, lectureModule, onlyofficeModule}
	for _, m := range loaders {
		if err := m.Load(ctx); err != nil {
			return nil, fmt.Errorf("%s - failed to load module %s: %w", componentsLogPrefix, m.Module(), err)
		}
	}

	return &Components{
		Origin:     origin,
		Decoder:    userrequest.NewDecoder(params.URIPrefix, params.Metrics),
		Help:       helpModule,
		Lecture:    lectureModule,
		OnlyOffice: onlyofficeModule,
		Licenses:   params.Licenses,
		Reloader:   settings.NewReloader(origin, helpModule, lectureModule, onlyofficeModule),
	}, nil
}

// Services returns the dispatcher view of the components.
func (c *Components) Services(health dispatcher.HealthFunc) dispatcher.Services {
	return dispatcher.Services{
		Decoder:    c.Decoder,
		Help:       c.Help,
		Lecture:    c.Lecture,
		OnlyOffice: c.OnlyOffice,
		Licenses:   c.Licenses,
		Health:     health,
	}
}
