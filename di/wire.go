//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"clinicbook/config"
	"clinicbook/infras/jwt"
	"clinicbook/infras/kafka"
	"clinicbook/infras/otel"
	"clinicbook/infras/postgres"
	"clinicbook/infras/redis"
	"clinicbook/internal/domains/appointment/reminder"
	appointmentRepository "clinicbook/internal/domains/appointment/repository"
	appointmentService "clinicbook/internal/domains/appointment/service"
	appointmentHandler "clinicbook/internal/handlers/appointment"
	"clinicbook/permissions"
	"clinicbook/shared/cache"
	"clinicbook/transport/http"
	"clinicbook/transport/http/middleware"
	"clinicbook/transport/http/router"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	permissions.Get,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var appointmentDomain = wire.NewSet(
	appointmentRepository.New,
	appointmentService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	appointmentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		appointmentDomain,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeReminderWorker() *reminder.Worker {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		appointmentDomain,
		reminder.New,
	)

	return &reminder.Worker{}
}
