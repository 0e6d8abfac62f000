// Package resilience groups fault-tolerance helpers.
//
// Only retry lives here today: exponential backoff with jitter for feed
// downloads in the batch CLI. Article fetches are never retried; a failed
// ingestion is reported to the caller as is.
package resilience
