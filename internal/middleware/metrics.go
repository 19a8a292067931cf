package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// FollowEdgeOps counts follow-edge mutations by operation and whether they changed state.
	FollowEdgeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_follow_edge_operations_total",
		Help: "Follow edge add/remove operations",
	}, []string{"operation", "changed"})

	// PostLikeOps counts like/unlike operations.
	PostLikeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_post_like_operations_total",
		Help: "Post like and unlike operations",
	}, []string{"operation", "changed"})

	// ActiveWebSockets is the number of open notification sockets.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialnet_active_websockets",
		Help: "Number of open notification WebSocket connections",
	})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide fiberprometheus middleware.
// Collectors register with the default registry once; later calls reuse them.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.NewWith(serviceName, "socialnet", "http")
	})
	return prom
}

// MetricsMiddleware records HTTP metrics, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	h := p.Middleware
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return h(c)
	}
}

// BoolLabel renders a boolean as a metric label value.
func BoolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
