package source

import (
	"path/filepath"
)

func buildLineIndex(content string) []uint32 {
	out := make([]uint32, 0, len(content)/32)
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			out = append(out, mustU32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Если LineIdx пустой, то весь файл - одна строка
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// бинпоиск: находим количество переводов строки строго до off
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := lo // индекс строки (0-based)

	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	return LineCol{Line: mustU32(line + 1), Col: off - startOff + 1}
}

// NormalizePath returns the slash-separated, cleaned form used as file identity.
func NormalizePath(p string) string {
	return normalizePath(p)
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
