// Package metrics provides the Prometheus metrics of the ingestion service.
//
// All metrics are registered with the default registry through promauto and
// exposed on /metrics:
//   - HTTP request metrics (count, duration, response size)
//   - Ingestion outcomes, SSRF rejections by reason and failures by cause
//   - Fetch redirects and body size
//
// Example usage:
//
//	start := time.Now()
//	outcome := svc.ExtractArticle(ctx, url)
//	metrics.RecordIngest(outcome.Status.String(), outcome.CauseLabel(), time.Since(start))
package metrics
