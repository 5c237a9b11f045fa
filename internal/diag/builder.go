package diag

import "surgelint/internal/source"

// NewRule creates a rule diagnostic located in file at span.
func NewRule(sev Severity, code Code, file *source.File, span source.Span, msg string) *RuleDiagnostic {
	return &RuleDiagnostic{
		Sev:  sev,
		Rule: code,
		Msg:  msg,
		File: file,
		Span: span,
	}
}

// NewRuleError is a shortcut for SevError rule diagnostics.
func NewRuleError(code Code, file *source.File, span source.Span, msg string) *RuleDiagnostic {
	return NewRule(SevError, code, file, span, msg)
}

// WithHint sets the remediation hint.
func (d *RuleDiagnostic) WithHint(hint string) *RuleDiagnostic {
	if d == nil {
		return nil
	}
	d.Help = hint
	return d
}

// WithFix appends a candidate fix. Only non-empty fixes are kept.
func (d *RuleDiagnostic) WithFix(fix Fix) *RuleDiagnostic {
	if d == nil || len(fix.Edits) == 0 {
		return d
	}
	d.Fixes = append(d.Fixes, fix)
	return d
}

// NewSurface creates a located workspace diagnostic.
func NewSurface(file *source.File, span source.Span, msg string) *SurfaceDiagnostic {
	return &SurfaceDiagnostic{
		Msg:  msg,
		Path: file.Path,
		Loc:  &Location{File: file, Span: span},
	}
}

// NewUnlocatedSurface creates a workspace diagnostic attached only to a path.
func NewUnlocatedSurface(path, msg string) *SurfaceDiagnostic {
	return &SurfaceDiagnostic{
		Msg:  msg,
		Path: source.NormalizePath(path),
	}
}

// WithHint sets the remediation hint.
func (d *SurfaceDiagnostic) WithHint(hint string) *SurfaceDiagnostic {
	if d == nil {
		return nil
	}
	d.Help = hint
	return d
}
