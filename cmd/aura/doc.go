// Package main hosts the aura CLI entrypoint and command graph.
//
// The Cobra command tree covers the HTTP server (serve), one-shot design
// analysis (analyze), LLM settings management (settings, providers), the
// initiatives store (initiatives), configuration scaffolding (config), and
// environment health (doctor). Configuration, the settings resolver, and
// logging are resolved once per invocation by commandContext so subcommands
// only describe user experience.
//
// Settings commands mutate the same persisted snapshot the server reads at
// startup; a running server picks up CLI changes on restart.
package main
