// Package ws provides the window event stream.
//
// The window surface connects to /events and receives window lifecycle
// events, manifest reload notices and system frames as JSON. Inbound traffic
// is limited to ping frames; the stream is host plumbing, not a protocol.
package ws
