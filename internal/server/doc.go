// Package server implements the HTTP side of rustrate: a validated
// net/http server wrapper and the catch-all handler that accepts every
// request, applies the configured artificial delay, and emits one
// metrics event per completed request.
package server
