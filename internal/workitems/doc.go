// Package workitems persists business briefs and initiatives in SQLite.
//
// Store.Execute is the generic query capability: SQL text plus positional
// parameters in, ordered rows out. ListInitiatives builds its WHERE clause
// from a fixed set of equality filters and always binds values as
// parameters. Schema changes ship as numbered files under migrations/ and are
// applied in order on Open.
package workitems
