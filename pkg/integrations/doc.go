// Package integrations provides HTTP clients for the upstream APIs that
// supply organization rows.
//
// # Overview
//
// The only upstream today is Jira, in the [jira] subpackage. It searches
// a governance project and turns every issue into a [rows.Row] for the
// graph builder.
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing every upstream client
// builds on:
//
//   - JSON GET and POST with default and per-request headers
//   - response caching via [cache.Cache] with a key prefix and TTL
//   - retries of 5xx and network failures on a [cache.Backoff] schedule
//   - a client-side rate limit ([Client.SetRateLimit])
//   - waiting out 429 responses, honoring Retry-After
//
// Typical use:
//
//	c := integrations.NewClient(fileCache, "jira:", cache.TTLHTTP, headers)
//	err := c.Cached(ctx, key, refresh, &resp, func() error {
//	    return c.Post(ctx, url, body, &resp)
//	})
//
// # Errors
//
// Status codes map to [ErrNotFound], [ErrUnauthorized], [ErrRateLimited]
// and [ErrNetwork]. Server errors are additionally wrapped as
// [cache.RetryableError].
//
// [jira]: github.com/matzehuels/orgtower/pkg/integrations/jira
// [rows.Row]: github.com/matzehuels/orgtower/pkg/rows.Row
package integrations
