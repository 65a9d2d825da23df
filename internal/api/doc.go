// Package api serves the HTTP surface: design reverse engineering, the
// initiatives listing, and the LLM settings endpoints.
//
// Handlers translate between camelCase JSON payloads and the analysis,
// llmconfig, and workitems packages. Response bodies follow the
// {success, data, message} envelope consumed by the web client. API keys are
// masked in every response.
//
// Settings mutations go through the resolver's guarded setters. A rejected
// change returns 422 with the per-field reasons; accepted changes are written
// to the settings snapshot before the response is sent.
//
// Every request gets a correlation id (X-Request-ID, generated when absent)
// that flows into logs through the request context.
package api
