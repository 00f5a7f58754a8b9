// Package diag defines the core diagnostic model shared by the driver and CLI.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     about positions and ranges in a source buffer.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any rendering beyond FormatShort, no IO, and
// no CLI integration. Pretty and JSON rendering live in internal/diagfmt;
// producing diagnostics from user input lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g. “line
// starts here”) rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Producers should use a diag.Reporter to decouple emission from storage:
// construct a ReportBuilder via NewReportBuilder (or the helper functions
// ReportError/ReportWarning/ReportInfo), chain WithNote, then call Emit.
// When no additional metadata is needed, call Reporter.Report(...) directly.
// diag.BagReporter aggregates diagnostics into a Bag, which supports sorting,
// deduplication and merging.
//
// # Consumers
//
//   - internal/diagfmt: renders Diagnostics into pretty/json output.
//   - internal/driver: validates user input, collects bags per buffer and
//     transports diagnostic data to CLI commands.
//
// Keep the data model deterministic: any new fields should avoid side
// effects, so the CLI and future tooling can safely serialise diagnostics
// for caching and testing.
package diag
