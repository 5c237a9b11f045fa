package diag

import (
	"surgelint/internal/source"
)

// TextEdit replaces the byte range Span of the file text the fix was
// computed against with NewText. Offsets are only valid for that exact text.
type TextEdit struct {
	Span    source.Span
	NewText string
}

// Fix is one machine-applicable remediation. Fixes attached to a diagnostic
// are mutually exclusive alternatives ordered by preference.
type Fix struct {
	Title string
	Edits []TextEdit
}

// Location points a diagnostic at a byte range of an analyzed file.
type Location struct {
	File *source.File
	Span source.Span
}

// Start resolves the 1-based start position.
func (l Location) Start() source.LineCol {
	start, _ := l.File.Resolve(l.Span)
	return start
}

// Diagnostic is the read-only view shared by every diagnostic producer.
// The set of implementations is closed: *RuleDiagnostic and *SurfaceDiagnostic.
type Diagnostic interface {
	Severity() Severity
	Code() Code
	Message() string
	// Specifier identifies the file the diagnostic belongs to.
	Specifier() string
	Location() (Location, bool)
	Hint() (string, bool)

	isDiagnostic()
}

// RuleDiagnostic is produced by per-file analysis.
type RuleDiagnostic struct {
	Sev   Severity
	Rule  Code
	Msg   string
	File  *source.File
	Span  source.Span
	Help  string
	Fixes []Fix
}

func (d *RuleDiagnostic) Severity() Severity { return d.Sev }
func (d *RuleDiagnostic) Code() Code         { return d.Rule }
func (d *RuleDiagnostic) Message() string    { return d.Msg }

func (d *RuleDiagnostic) Specifier() string {
	if d.File == nil {
		return ""
	}
	return d.File.Path
}

func (d *RuleDiagnostic) Location() (Location, bool) {
	if d.File == nil {
		return Location{}, false
	}
	return Location{File: d.File, Span: d.Span}, true
}

func (d *RuleDiagnostic) Hint() (string, bool) {
	return d.Help, d.Help != ""
}

// Fixable reports whether at least one candidate fix is attached.
func (d *RuleDiagnostic) Fixable() bool {
	return len(d.Fixes) > 0
}

func (*RuleDiagnostic) isDiagnostic() {}

// SurfaceDiagnostic is produced by the workspace-level export-surface check.
// It never carries fixes and may have no single source location.
type SurfaceDiagnostic struct {
	Msg  string
	Path string
	// Loc is nil when the violation has no single source point.
	Loc  *Location
	Help string
}

func (d *SurfaceDiagnostic) Severity() Severity { return SevError }
func (d *SurfaceDiagnostic) Code() Code         { return SurfaceCode }
func (d *SurfaceDiagnostic) Message() string    { return d.Msg }

func (d *SurfaceDiagnostic) Specifier() string {
	if d.Loc != nil && d.Loc.File != nil {
		return d.Loc.File.Path
	}
	return d.Path
}

func (d *SurfaceDiagnostic) Location() (Location, bool) {
	if d.Loc == nil || d.Loc.File == nil {
		return Location{}, false
	}
	return *d.Loc, true
}

func (d *SurfaceDiagnostic) Hint() (string, bool) {
	return d.Help, d.Help != ""
}

func (*SurfaceDiagnostic) isDiagnostic() {}
