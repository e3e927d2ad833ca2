package cache

import "time"

// Config holds cache TTL values and key naming.
type Config struct {
	TourTTL     time.Duration `json:"tourTTL"`     // single tour reads
	TourListTTL time.Duration `json:"tourListTTL"` // paginated list results
	StatsTTL    time.Duration `json:"statsTTL"`    // aggregation results
	KeyPrefix   string        `json:"keyPrefix"`
	TagPrefix   string        `json:"tagPrefix"`
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TourTTL:     2 * time.Minute,
		TourListTTL: time.Minute,
		StatsTTL:    10 * time.Minute,
		KeyPrefix:   "tours:",
		TagPrefix:   "tag:",
	}
}

// TTLFor returns the TTL appropriate for a key class.
func (c Config) TTLFor(class string) time.Duration {
	switch class {
	case "tour":
		return c.TourTTL
	case "tour_list":
		return c.TourListTTL
	case "stats":
		return c.StatsTTL
	default:
		return c.TourTTL
	}
}
