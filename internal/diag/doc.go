// Package diag defines the diagnostic model shared by the analyzer, the
// workspace surface check, the fix engine and the reporters.
//
// # Data model
//
// Diagnostic is a closed interface with two implementations:
//
//   - RuleDiagnostic – produced by per-file analysis. Always located in the
//     analyzed file snapshot and may carry candidate fixes.
//   - SurfaceDiagnostic – produced by the workspace export-surface check. Its
//     code is always SurfaceCode, it never carries fixes and its location is
//     optional.
//
// Consumers read diagnostics only through the interface accessors (Severity,
// Code, Message, Specifier, Location, Hint). Code that needs variant-specific
// data, such as the fix engine reading candidate fixes, uses a type switch.
//
// # Fix suggestions
//
// Fix is an ordered list of TextEdit values. The edits of a fix are expressed
// against the exact text the analyzer saw; once any edit at a lower offset
// changes the text length, every other computed edit is stale. The fix engine
// therefore re-analyzes after each applied batch instead of chaining edits.
//
// # Scope
//
// Package diag performs no formatting or IO. Rendering lives in
// internal/diagfmt, application of fixes in internal/fix.
package diag
