package source

import (
	"fmt"

	"fortio.org/safecast"
)

// File is an immutable snapshot of one file's text together with the line
// index needed to turn byte offsets into positions. A File is produced per
// analysis pass and never mutated; a re-analysis yields a new File.
type File struct {
	Path    string
	Media   MediaKind
	content string
	lineIdx []uint32 // offsets of '\n'
}

// NewFile snapshots content for the given path.
func NewFile(path string, content string) *File {
	return &File{
		Path:    normalizePath(path),
		Media:   MediaKindFromPath(path),
		content: content,
		lineIdx: buildLineIndex(content),
	}
}

// Text returns the full text of the snapshot.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.content
}

// Len returns the text length in bytes.
func (f *File) Len() int {
	return len(f.content)
}

// LineCount returns the number of lines, counting a trailing unterminated line.
func (f *File) LineCount() int {
	return len(f.lineIdx) + 1
}

// Slice returns the text covered by span, clamped to the file bounds.
func (f *File) Slice(sp Span) string {
	start, end := int(sp.Start), int(sp.End)
	if start > len(f.content) {
		start = len(f.content)
	}
	if end > len(f.content) {
		end = len(f.content)
	}
	if end < start {
		return ""
	}
	return f.content[start:end]
}

// Resolve converts a span into 1-based line and column positions.
func (f *File) Resolve(span Span) (start, end LineCol) {
	return toLineCol(f.lineIdx, span.Start), toLineCol(f.lineIdx, span.End)
}

// LineColumnIndex converts a byte offset into a zero-based line and column.
func (f *File) LineColumnIndex(off uint32) LineColIndex {
	lc := toLineCol(f.lineIdx, off)
	return LineColIndex{Line: lc.Line - 1, Col: lc.Col - 1}
}

// LineStart returns the byte offset at which the given 1-based line begins.
func (f *File) LineStart(lineNum uint32) uint32 {
	if lineNum <= 1 {
		return 0
	}
	idx := int(lineNum) - 2
	if idx >= len(f.lineIdx) {
		return mustU32(len(f.content))
	}
	return f.lineIdx[idx] + 1
}

// GetLine возвращает строку с заданным номером (1-based) из файла без '\n'.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenLineIdx := mustU32(len(f.lineIdx))
	lenContent := mustU32(len(f.content))

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.lineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.lineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start > lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}
	return f.content[start:end]
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}
