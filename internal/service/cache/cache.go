package cache

import "time"

// BytesCache stores raw byte values under string keys with a TTL. The alert
// dispatcher uses it to arm per-pair cooldowns, so implementations only need
// presence semantics: an expired key must read as absent.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
