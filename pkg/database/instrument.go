package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/medvisit/visitflow/pkg/metrics"
)

const startTimeKey = "metrics:start_time"

// InstrumentQueries registers gorm callbacks that record per-operation query
// latency into the collector's histogram.
func InstrumentQueries(db *gorm.DB, collector *metrics.Collector) error {
	callbacks := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{op: "create",
			before: db.Callback().Create().Before("gorm:create").Register,
			after:  db.Callback().Create().After("gorm:create").Register},
		{op: "query",
			before: db.Callback().Query().Before("gorm:query").Register,
			after:  db.Callback().Query().After("gorm:query").Register},
		{op: "update",
			before: db.Callback().Update().Before("gorm:update").Register,
			after:  db.Callback().Update().After("gorm:update").Register},
		{op: "delete",
			before: db.Callback().Delete().Before("gorm:delete").Register,
			after:  db.Callback().Delete().After("gorm:delete").Register},
		{op: "raw",
			before: db.Callback().Raw().Before("gorm:raw").Register,
			after:  db.Callback().Raw().After("gorm:raw").Register},
	}

	for _, cb := range callbacks {
		if err := cb.before("metrics:before_"+cb.op, startTimer); err != nil {
			return fmt.Errorf("registering %s callback: %w", cb.op, err)
		}
		if err := cb.after("metrics:after_"+cb.op, observe(cb.op, collector)); err != nil {
			return fmt.Errorf("registering %s callback: %w", cb.op, err)
		}
	}
	return nil
}

func startTimer(tx *gorm.DB) {
	tx.InstanceSet(startTimeKey, time.Now())
}

func observe(op string, collector *metrics.Collector) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		collector.DBQueryDuration.
			WithLabelValues(op, tx.Statement.Table).
			Observe(time.Since(start).Seconds())
	}
}
