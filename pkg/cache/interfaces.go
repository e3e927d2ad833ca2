package cache

import "time"

// Manager defines the read-through cache used by the tour read paths.
// A cache miss is reported as (found=false, nil error); failures never
// block a request, callers fall through to the database.
type Manager interface {
	Get(key string, dest interface{}) (bool, error)
	Set(key string, value interface{}, ttl time.Duration, tags ...string) error
	Delete(key string) error
	InvalidateByTag(tag string) error
	Stats() Stats
	HealthCheck() error
}

// Stats provides cache performance metrics.
type Stats struct {
	TotalHits   int64   `json:"totalHits"`
	TotalMisses int64   `json:"totalMisses"`
	HitRate     float64 `json:"hitRate"`
}
