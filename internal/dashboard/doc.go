// Package dashboard renders the live terminal dashboard: request rate
// statistics, delay statistics, an RPS chart over the trailing minute,
// and a tail of recent request logs.
package dashboard
