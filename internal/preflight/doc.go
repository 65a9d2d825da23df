// Package preflight provides readiness checks for the filesystem paths,
// database, gateway, and provider credentials aura depends on.
//
// The CLI "aura doctor" command runs RunAll and renders each Result. The
// server runs the same checks at startup and logs failures without refusing
// to start: a missing gateway only means real analyses fall back to mock
// results.
package preflight
