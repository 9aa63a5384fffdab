package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	PostsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_created_total",
			Help: "Total number of posts created.",
		},
	)

	PasswordResetRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_password_reset_requests_total",
			Help: "Password reset requests by outcome.",
		},
		[]string{"outcome"},
	)

	PasswordResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_password_resets_total",
			Help: "Password reset submissions by result.",
		},
		[]string{"result"},
	)

	ResetTokensPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_reset_tokens_purged_total",
			Help: "Expired reset tokens removed by the janitor.",
		},
	)

	MailDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_mail_deliveries_total",
			Help: "Outbound mail deliveries by result.",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// MustRegister registers all collectors on the default registry. Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			RegistrationsTotal,
			LoginsTotal,
			PostsCreatedTotal,
			PasswordResetRequestsTotal,
			PasswordResetsTotal,
			ResetTokensPurgedTotal,
			MailDeliveriesTotal,
		)
	})
}

// Middleware records request count and latency per route pattern
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		HTTPRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		HTTPRequestDurationSeconds.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry in Prometheus text format
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
