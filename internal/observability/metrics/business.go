package metrics

import "time"

// RecordIngest records one finished ingestion.
// cause is only counted for outcomes other than "extracted".
func RecordIngest(outcome, cause string, duration time.Duration) {
	IngestRequestsTotal.WithLabelValues(outcome).Inc()
	IngestDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	if outcome != "extracted" {
		IngestFailuresTotal.WithLabelValues(cause).Inc()
	}
}

// RecordBlocked records an SSRF rejection.
func RecordBlocked(reason string) {
	IngestBlockedTotal.WithLabelValues(reason).Inc()
}

// RecordFetch records a successful fetch.
//
// Example:
//
//	result, err := fetcher.Fetch(ctx, url)
//	if err == nil {
//	    metrics.RecordFetch(result.Redirects, len(result.Body))
//	}
func RecordFetch(redirects, size int) {
	FetchRedirects.Observe(float64(redirects))
	FetchBodySize.Observe(float64(size))
}

// RecordRateLimited records a request refused by the rate limiter.
func RecordRateLimited() {
	RateLimitRejectedTotal.Inc()
}

// RecordAuthFailure records a rejected credential.
func RecordAuthFailure(reason string) {
	AuthFailuresTotal.WithLabelValues(reason).Inc()
}
