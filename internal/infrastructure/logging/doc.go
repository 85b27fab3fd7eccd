// Package logging provides structured logging built on zap.
//
// Production logs are JSON to stdout; development mode switches to a colored
// console encoder with stacktraces enabled.
package logging
