// Package openalex provides the rate-limited OpenAlex metadata client.
//
// One Client is built at process start and shared by every caller, so the
// request budget holds across concurrent operations. Requests that fail
// with 429 or 5xx, or at the transport level, are retried with exponential
// backoff. A request that still fails degrades to an empty listing instead
// of returning an error; callers check Response.OK when they need to know.
package openalex
