// Package api serves the bridge's health and metrics endpoints.
//
//	GET /metrics          Prometheus exposition
//	GET /api/v1/health    200 when the broker is connected and the store
//	                      answers, 503 otherwise
//	GET /api/v1/status    runtime statistics as JSON
//
// The server is disabled unless api.enabled is set:
//
//	server, err := api.New(deps)
//	err = server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
