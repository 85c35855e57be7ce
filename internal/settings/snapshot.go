package settings

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"
)

// snapshot holds the in-memory DB config values.
type snapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

// globalSnapshot stores the latest snapshot atomically.
var globalSnapshot atomic.Value // stores snapshot

// init seeds the global snapshot.
func init() {
	globalSnapshot.Store(snapshot{values: map[string]json.RawMessage{}})
}

// Store replaces the in-memory snapshot of DB-backed settings.
func Store(updatedAt time.Time, values map[string]json.RawMessage) {
	next := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		if v == nil {
			next[key] = nil
			continue
		}
		copied := make([]byte, len(v))
		copy(copied, v)
		next[key] = copied
	}

	globalSnapshot.Store(snapshot{
		updatedAt: updatedAt.UTC(),
		values:    next,
	})
}

// Value returns a copy of the raw config value for a key.
func Value(key string) (json.RawMessage, bool) {
	cfg := load()
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	val, ok := cfg.values[key]
	if !ok {
		return nil, false
	}
	if val == nil {
		return nil, true
	}
	copied := make([]byte, len(val))
	copy(copied, val)
	return copied, true
}

// UpdatedAt returns the last update timestamp for the snapshot.
func UpdatedAt() time.Time {
	return load().updatedAt
}

// load returns the current snapshot with safe defaults.
func load() snapshot {
	v := globalSnapshot.Load()
	cfg, ok := v.(snapshot)
	if !ok {
		return snapshot{values: map[string]json.RawMessage{}}
	}
	if cfg.values == nil {
		return snapshot{updatedAt: cfg.updatedAt, values: map[string]json.RawMessage{}}
	}
	return cfg
}

// RedeemDelay returns the configured pause between batch calls.
func RedeemDelay() time.Duration {
	millis := intValue(RedeemDelayMillisKey, DefaultRedeemDelayMillis)
	if millis < 0 {
		millis = 0
	}
	return time.Duration(millis) * time.Millisecond
}

// CouponCacheTTL returns the configured directory cache TTL.
func CouponCacheTTL() time.Duration {
	seconds := intValue(CouponCacheTTLSecondsKey, DefaultCouponCacheTTLSeconds)
	if seconds <= 0 {
		seconds = DefaultCouponCacheTTLSeconds
	}
	return time.Duration(seconds) * time.Second
}

// PublisherLanguage returns the configured publisher language code.
func PublisherLanguage() string {
	raw, ok := Value(PublisherLanguageKey)
	if !ok || raw == nil {
		return DefaultPublisherLanguage
	}
	var lang string
	if errUnmarshal := json.Unmarshal(raw, &lang); errUnmarshal != nil {
		return DefaultPublisherLanguage
	}
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultPublisherLanguage
	}
	return lang
}

func intValue(key string, fallback int) int {
	raw, ok := Value(key)
	if !ok || raw == nil {
		return fallback
	}
	var parsed int
	if errUnmarshal := json.Unmarshal(raw, &parsed); errUnmarshal != nil {
		return fallback
	}
	return parsed
}
