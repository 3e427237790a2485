// Package httputil downloads report payloads over HTTP.
//
// The report service publishes finished results as JSON documents. A
// [Fetcher] retrieves them with retries for transient failures (network
// errors, 5xx and 429 responses) and keeps a copy in a [cache.Cache] so
// repeated runs over the same URL do not hit the service again.
//
//	f := httputil.NewFetcher(store, logger)
//	data, err := f.Get(ctx, "https://reports.example.com/u/42/result.json")
//
// Responses larger than [Fetcher.MaxBytes] are rejected with TOO_LARGE, a
// 404 maps to NOT_FOUND, and other 4xx responses to INVALID_INPUT.
package httputil
