package fix

import (
	"surgelint/internal/diag"
	"surgelint/internal/source"
)

// InsertText creates fix that inserts text at offset.
func InsertText(title string, at uint32, text string) diag.Fix {
	return diag.Fix{
		Title: title,
		Edits: []diag.TextEdit{{
			Span:    source.Span{Start: at, End: at},
			NewText: text,
		}},
	}
}

// ReplaceSpan creates fix that replaces span with text.
func ReplaceSpan(title string, span source.Span, text string) diag.Fix {
	return diag.Fix{
		Title: title,
		Edits: []diag.TextEdit{{
			Span:    span,
			NewText: text,
		}},
	}
}

// DeleteSpan creates fix that removes span.
func DeleteSpan(title string, span source.Span) diag.Fix {
	return ReplaceSpan(title, span, "")
}

// Combine merges several single-purpose fixes into one multi-edit fix.
func Combine(title string, fixes ...diag.Fix) diag.Fix {
	out := diag.Fix{Title: title}
	for _, f := range fixes {
		out.Edits = append(out.Edits, f.Edits...)
	}
	return out
}
