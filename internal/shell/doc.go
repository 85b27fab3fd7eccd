// Package shell assembles and runs the application: the Builder collects
// capability extensions, the host serves the window surface, the capability
// API and the event stream, and blocks until the application terminates.
package shell
