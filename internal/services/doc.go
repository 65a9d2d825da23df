// Package services defines shared utilities consumed by the design analysis
// pipeline, the configuration resolver, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and module names for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent HTTP statuses for the API surface.
//
// Use these helpers when wiring new handlers so operational behaviour (error
// handling, observability) stays uniform across the service.
package services
