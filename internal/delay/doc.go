// Package delay implements the artificial request latency policy.
//
// A policy is either a fixed delay ("250") or a uniform range ("30-150"),
// parsed once at startup and sampled concurrently by every request handler.
package delay
