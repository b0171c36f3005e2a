// Package redists writes samples to RedisTimeSeries.
//
// Every sample becomes one command:
//
//	TS.ADD <key> <*|unix-ms> <value> ON_DUPLICATE LAST
//
// "*" lets the server assign the timestamp. ON_DUPLICATE LAST keeps a
// redelivered message (QoS 1 after reconnect) from failing the write when it
// lands in the same millisecond; set store.redis.on_duplicate to "" to use
// the key's own policy instead.
//
// The store URL follows go-redis: redis://[user:pass@]host[:port][/db],
// or rediss:// for TLS.
package redists
