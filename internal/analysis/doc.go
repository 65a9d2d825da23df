// Package analysis turns a design into a hierarchy of work items.
//
// Service validates the incoming request, builds prompts, and hands the call
// to Pipeline. Pipeline either runs the offline MockAnalyzer directly or asks
// the remote gateway first and falls back to the mock through a
// FallbackStrategy when the gateway fails. A gateway failure never reaches the
// caller; the returned Result carries analysisMode, requestedMode, and
// fallbackReason instead.
//
// Work-item levels nest story inside epic inside feature inside initiative
// inside business-brief. A request for one level includes every level below it.
package analysis
