//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"ServiceDesk/internal/biz"
	"ServiceDesk/internal/conf"
	"ServiceDesk/internal/data"
	"ServiceDesk/internal/event"
	"ServiceDesk/internal/server"
	"ServiceDesk/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
)

// wireApp init kratos application.
func wireApp(*conf.App, *conf.Server, *conf.Data, *conf.Events, *conf.Analytics, log.Logger, *prometheus.Registry) (*kratos.App, func(), error) {
	panic(wire.Build(
		data.ProviderSet,
		event.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,
		server.ProviderSet,
		wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		newCron,
		newApp,
	))
}
