package telemetry

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// registerAround installs a start-time callback before, and after(operation)
// after, every SQL-issuing callback chain
func registerAround(db *gorm.DB, name string, after func(operation string) func(*gorm.DB)) error {
	startKey := name + ":start"
	before := func(tx *gorm.DB) {
		tx.InstanceSet(startKey, time.Now())
	}

	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register(name+":before_create", before),
		cb.Create().After("gorm:create").Register(name+":after_create", after("insert")),
		cb.Query().Before("gorm:query").Register(name+":before_query", before),
		cb.Query().After("gorm:query").Register(name+":after_query", after("select")),
		cb.Update().Before("gorm:update").Register(name+":before_update", before),
		cb.Update().After("gorm:update").Register(name+":after_update", after("update")),
		cb.Delete().Before("gorm:delete").Register(name+":before_delete", before),
		cb.Delete().After("gorm:delete").Register(name+":after_delete", after("delete")),
		cb.Row().Before("gorm:row").Register(name+":before_row", before),
		cb.Row().After("gorm:row").Register(name+":after_row", after("row")),
		cb.Raw().Before("gorm:raw").Register(name+":before_raw", before),
		cb.Raw().After("gorm:raw").Register(name+":after_raw", after("raw")),
	)
}

// elapsedSince returns the time since the start recorded by registerAround
func elapsedSince(tx *gorm.DB, name string) (time.Duration, bool) {
	v, ok := tx.InstanceGet(name + ":start")
	if !ok {
		return 0, false
	}
	start, ok := v.(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

func isQueryFailure(err error) bool {
	return err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
}
