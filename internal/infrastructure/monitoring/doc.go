// Package monitoring provides Prometheus metrics for the shell.
//
// Each Metrics instance owns its own registry so tests can construct
// collectors without colliding with the default registry.
package monitoring
