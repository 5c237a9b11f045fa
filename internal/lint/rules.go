package lint

import (
	"regexp"
	"strings"

	"surgelint/internal/diag"
	"surgelint/internal/fix"
	"surgelint/internal/source"
)

const (
	CodeEOLLast             diag.Code = "eol-last"
	CodeNoEmptyImportGroup  diag.Code = "no-empty-import-group"
	CodeNoExtraSemicolons   diag.Code = "no-extra-semicolons"
	CodeNoMultipleEmptyLine diag.Code = "no-multiple-empty-lines"
	CodeNoTodoComments      diag.Code = "no-todo-comments"
	CodeNoTrailingSpaces    diag.Code = "no-trailing-spaces"
)

type trailingSpaces struct{ meta }

func (r trailingSpaces) Check(ctx *Context) {
	lines, starts := ctx.Lines()
	for i, line := range lines {
		body := strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimRight(body, " \t")
		if len(trimmed) == len(body) {
			continue
		}
		span := source.NewSpan(starts[i]+len(trimmed), starts[i]+len(body))
		ctx.Report(r, span, "Trailing whitespace is not allowed").
			WithHint("Remove the whitespace at the end of the line").
			WithFix(fix.DeleteSpan("Remove trailing whitespace", span))
	}
}

type eolLast struct{ meta }

func (r eolLast) Check(ctx *Context) {
	text := ctx.Text()
	if text == "" || strings.HasSuffix(text, "\n") {
		return
	}
	at := source.NewSpan(len(text), len(text))
	ctx.Report(r, at, "Newline required at end of file").
		WithFix(fix.InsertText("Insert final newline", at.Start, "\n"))
}

type multipleEmptyLines struct{ meta }

func (r multipleEmptyLines) Check(ctx *Context) {
	lines, starts := ctx.Lines()
	count := len(lines)
	if strings.HasSuffix(ctx.Text(), "\n") {
		// последний элемент после финального \n не является строкой
		count--
	}
	isEmpty := func(i int) bool { return strings.TrimSuffix(lines[i], "\r") == "" }

	for i := 0; i < count; i++ {
		if !isEmpty(i) {
			continue
		}
		j := i
		for j+1 < count && isEmpty(j+1) {
			j++
		}
		if j > i {
			end := len(ctx.Text())
			if j+1 < len(starts) {
				end = starts[j+1]
			}
			span := source.NewSpan(starts[i+1], end)
			ctx.Report(r, span, "Multiple consecutive empty lines are not allowed").
				WithFix(fix.DeleteSpan("Remove extra empty lines", span))
		}
		i = j
	}
}

var emptyImportGroup = regexp.MustCompile(`::\s*\{\s*\}`)

type emptyImportGroupRule struct{ meta }

func (r emptyImportGroupRule) Check(ctx *Context) {
	code := ctx.Code()
	for _, loc := range emptyImportGroup.FindAllStringIndex(code, -1) {
		if !onImportLine(code, loc[0]) {
			continue
		}
		span := source.NewSpan(loc[0], loc[1])
		ctx.Report(r, span, "Import group does not name any items").
			WithHint("Import the module itself or list the items to import").
			WithFix(fix.DeleteSpan("Remove empty import group", span))
	}
}

func onImportLine(code string, off int) bool {
	lineStart := strings.LastIndexByte(code[:off], '\n') + 1
	return strings.HasPrefix(strings.TrimSpace(code[lineStart:off]), "import ")
}

type extraSemicolons struct{ meta }

// Check reports every ";" followed (after optional whitespace) by another ";".
// Neighbouring reports overlap, so long runs shrink over several fix passes.
func (r extraSemicolons) Check(ctx *Context) {
	code := ctx.Code()
	depth := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ';':
			if depth > 0 {
				continue
			}
			j := i + 1
			for j < len(code) && (code[j] == ' ' || code[j] == '\t') {
				j++
			}
			if j < len(code) && code[j] == ';' {
				span := source.NewSpan(i, j+1)
				ctx.Report(r, span, "Unnecessary semicolon").
					WithFix(fix.ReplaceSpan("Remove extra semicolon", span, ";"))
			}
		}
	}
}

var todoMarker = regexp.MustCompile(`\b(TODO|FIXME)\b`)

type todoComments struct{ meta }

func (r todoComments) Check(ctx *Context) {
	for _, c := range ctx.Comments() {
		m := todoMarker.FindString(c.Body())
		if m == "" {
			continue
		}
		ctx.Report(r, c.Span, m+" comment left in source").
			WithHint("Resolve the comment or track the work in an issue")
	}
}
