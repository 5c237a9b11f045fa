package source

import (
	"path/filepath"
	"strings"
)

// MediaKind classifies a file by its extension.
type MediaKind uint8

const (
	// MediaUnknown is any file the analyzer does not understand.
	MediaUnknown MediaKind = iota
	// MediaSurge is a Surge module (*.sg).
	MediaSurge
	// MediaSurgeHeader is a declaration-only Surge file (*.sgh).
	MediaSurgeHeader
)

func (m MediaKind) String() string {
	switch m {
	case MediaSurge:
		return "surge"
	case MediaSurgeHeader:
		return "surge-header"
	}
	return "unknown"
}

// MediaKindFromPath resolves the media kind from the path extension.
func MediaKindFromPath(path string) MediaKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sg":
		return MediaSurge
	case ".sgh":
		return MediaSurgeHeader
	}
	return MediaUnknown
}

// IsLintable reports whether files of this kind are fed to the analyzer.
func (m MediaKind) IsLintable() bool {
	return m != MediaUnknown
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// LineColIndex is a zero-based position, as used by machine-readable output.
type LineColIndex struct {
	Line uint32 // 0-based
	Col  uint32 // 0-based, in bytes
}
