package lint

import (
	"fmt"
	"strings"

	"surgelint/internal/source"
)

// CommentKind distinguishes line and block comments.
type CommentKind uint8

const (
	CommentLine CommentKind = iota
	CommentBlock
)

// Comment is a comment found by the scanner.
type Comment struct {
	Kind CommentKind
	Span source.Span
	Text string // including the // or /* */ markers
}

// Body returns the comment text without markers, trimmed.
func (c Comment) Body() string {
	s := c.Text
	switch c.Kind {
	case CommentLine:
		s = strings.TrimPrefix(s, "//")
	case CommentBlock:
		s = strings.TrimSuffix(strings.TrimPrefix(s, "/*"), "*/")
	}
	return strings.TrimSpace(s)
}

// ParseError is returned when a file cannot be scanned.
type ParseError struct {
	Path string
	Pos  source.LineCol
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Pos.Line, e.Pos.Col, e.Msg)
}

// scanResult is the lexical view rules work on.
type scanResult struct {
	// code is the file text with string literal bodies and comments replaced
	// by spaces. Newlines are kept so offsets and lines match the original.
	code     string
	comments []Comment
}

type delim struct {
	ch  byte
	off int
}

// scan masks literals and comments and checks delimiter balance.
func scan(file *source.File) (*scanResult, error) {
	text := file.Text()
	code := []byte(text)
	res := &scanResult{}
	var stack []delim

	fail := func(off int, msg string) error {
		return &ParseError{Path: file.Path, Pos: toPos(file, off), Msg: msg}
	}
	blank := func(from, to int) {
		for i := from; i < to; i++ {
			if code[i] != '\n' {
				code[i] = ' '
			}
		}
	}

	for i := 0; i < len(text); {
		b := text[i]
		switch {
		case b == '"':
			end, err := scanString(text, i)
			if err != "" {
				return nil, fail(i, err)
			}
			blank(i+1, end-1)
			i = end

		case b == '/' && i+1 < len(text) && text[i+1] == '/':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text)
			} else {
				end += i
			}
			res.comments = append(res.comments, Comment{Kind: CommentLine, Span: source.NewSpan(i, end), Text: text[i:end]})
			blank(i, end)
			i = end

		case b == '/' && i+1 < len(text) && text[i+1] == '*':
			end, ok := scanBlockComment(text, i)
			if !ok {
				return nil, fail(i, "unterminated block comment")
			}
			res.comments = append(res.comments, Comment{Kind: CommentBlock, Span: source.NewSpan(i, end), Text: text[i:end]})
			blank(i, end)
			i = end

		case b == '(' || b == '[' || b == '{':
			stack = append(stack, delim{ch: b, off: i})
			i++

		case b == ')' || b == ']' || b == '}':
			if len(stack) == 0 {
				return nil, fail(i, fmt.Sprintf("unexpected closing %q", b))
			}
			top := stack[len(stack)-1]
			if closing(top.ch) != b {
				return nil, fail(i, fmt.Sprintf("mismatched %q, expected %q", b, closing(top.ch)))
			}
			stack = stack[:len(stack)-1]
			i++

		default:
			i++
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, fail(top.off, fmt.Sprintf("unclosed %q", top.ch))
	}

	res.code = string(code)
	return res, nil
}

// scanString returns the offset after the closing quote, or an error text.
func scanString(text string, start int) (int, string) {
	i := start + 1
	for i < len(text) {
		switch text[i] {
		case '"':
			return i + 1, ""
		case '\\':
			// escape: пропускаем следующий байт без валидации
			i += 2
			continue
		case '\n':
			return 0, "newline in string literal"
		}
		i++
	}
	return 0, "unterminated string literal"
}

// scanBlockComment handles nested /* */ comments.
func scanBlockComment(text string, start int) (int, bool) {
	depth := 0
	i := start
	for i+1 < len(text) {
		switch {
		case text[i] == '/' && text[i+1] == '*':
			depth++
			i += 2
		case text[i] == '*' && text[i+1] == '/':
			depth--
			i += 2
			if depth == 0 {
				return i, true
			}
		default:
			i++
		}
	}
	return 0, false
}

func closing(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

func toPos(file *source.File, off int) source.LineCol {
	start, _ := file.Resolve(source.NewSpan(off, off))
	return start
}
