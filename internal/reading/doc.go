// Package reading decodes sensor message payloads.
//
// A payload is UTF-8 JSON:
//
//	{"temperature": 21.4, "pressure": 1013.25, "humidity": 48.0}
//
// All three members are required and must be JSON numbers that fit in a
// float64. Member names are case-sensitive. Unknown members are ignored so
// producers can add fields without breaking the bridge.
//
// Decode is pure: the same bytes always give the same Reading or the same
// error category.
package reading
