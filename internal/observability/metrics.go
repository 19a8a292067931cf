package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

// DatabaseQueryLatency records database query latency by operation and table.
var DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "socialnet_database_query_latency_seconds",
	Help:    "Database query latency in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"operation", "table"})

const startedAtKey = "observability:started_at"

// RegisterQueryMetrics hooks GORM callbacks so statements are observed in
// DatabaseQueryLatency.
func RegisterQueryMetrics(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("metrics:before_create", markStart),
		cb.Create().After("gorm:create").Register("metrics:after_create", observe("create")),
		cb.Query().Before("gorm:query").Register("metrics:before_query", markStart),
		cb.Query().After("gorm:query").Register("metrics:after_query", observe("query")),
		cb.Update().Before("gorm:update").Register("metrics:before_update", markStart),
		cb.Update().After("gorm:update").Register("metrics:after_update", observe("update")),
		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", markStart),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", observe("delete")),
		cb.Row().Before("gorm:row").Register("metrics:before_row", markStart),
		cb.Row().After("gorm:row").Register("metrics:after_row", observe("row")),
		cb.Raw().Before("gorm:raw").Register("metrics:before_raw", markStart),
		cb.Raw().After("gorm:raw").Register("metrics:after_raw", observe("raw")),
	)
}

func markStart(tx *gorm.DB) {
	tx.InstanceSet(startedAtKey, time.Now())
}

func observe(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
	}
}
