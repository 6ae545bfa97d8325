package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records per-route HTTP metrics into reg.
func Metrics(reg *prometheus.Registry, service string) fiber.Handler {
	prom := fiberprometheus.NewWithRegistry(reg, service, "http", "", nil)
	return prom.Middleware
}

// MetricsHandler exposes reg in the Prometheus text format.
func MetricsHandler(reg *prometheus.Registry) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
