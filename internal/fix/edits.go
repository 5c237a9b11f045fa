package fix

import (
	"fmt"
	"sort"
	"strings"

	"surgelint/internal/diag"
)

// CollectEdits flattens the first candidate fix of every diagnostic into one
// edit list. Alternative fixes are never applied automatically.
func CollectEdits(diagnostics []*diag.RuleDiagnostic) []diag.TextEdit {
	edits := make([]diag.TextEdit, 0, len(diagnostics))
	for _, d := range diagnostics {
		if d == nil || len(d.Fixes) == 0 {
			continue
		}
		edits = append(edits, d.Fixes[0].Edits...)
	}
	return edits
}

// RemoveOverlaps sorts edits by start offset and drops every edit that starts
// before the end of the last kept edit, so the earlier-starting edit wins.
// Dropped edits are picked up again on the next pass, once the analyzer has
// recomputed them against the updated text.
func RemoveOverlaps(edits []diag.TextEdit) []diag.TextEdit {
	if len(edits) == 0 {
		return nil
	}
	sorted := make([]diag.TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	kept := sorted[:1]
	for _, cur := range sorted[1:] {
		prev := kept[len(kept)-1]
		if cur.Span.Start < prev.Span.End {
			continue
		}
		kept = append(kept, cur)
	}
	return kept
}

// PendingEdits returns the non-overlapping edit batch the next convergence
// pass would apply.
func PendingEdits(diagnostics []*diag.RuleDiagnostic) []diag.TextEdit {
	return RemoveOverlaps(CollectEdits(diagnostics))
}

// ApplyEdits applies sorted, non-overlapping edits to text in one batch.
func ApplyEdits(text string, edits []diag.TextEdit) (string, error) {
	var b strings.Builder
	b.Grow(len(text))
	cursor := 0
	for _, e := range edits {
		start, end := int(e.Span.Start), int(e.Span.End)
		if start < cursor || end < start || end > len(text) {
			return "", fmt.Errorf("edit %s out of range (text length %d, cursor %d)", e.Span, len(text), cursor)
		}
		b.WriteString(text[cursor:start])
		b.WriteString(e.NewText)
		cursor = end
	}
	b.WriteString(text[cursor:])
	return b.String(), nil
}
