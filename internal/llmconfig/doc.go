// Package llmconfig resolves which LLM provider, model, and credential each
// application module should use.
//
// The Resolver owns the global LLM setting, the closed module map with its
// primary and backup tiers, the reverse-engineering selections, and the
// read-only provider catalog. Setters never return errors for bad input; they
// return a Change describing whether the mutation was applied so HTTP and CLI
// surfaces can report rejections without relying on log output.
//
// Persistence is explicit. SnapshotStore loads the JSON snapshot at startup and
// saves it after successful mutations; the Resolver itself performs no I/O.
package llmconfig
