package lsp

import (
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// positionAt converts a byte offset into an LSP position counted in UTF-16
// code units. Offsets past the end clamp to the end of text.
func positionAt(text string, offset int) protocol.Position {
	offset = min(max(offset, 0), len(text))

	var line, char protocol.UInteger

	for idx := 0; idx < offset; {
		r, width := utf8.DecodeRuneInString(text[idx:])
		if idx+width > offset {
			break
		}

		switch {
		case r == '\n':
			line++
			char = 0
		case r >= 0x10000:
			char += 2
		default:
			char++
		}

		idx += width
	}

	return protocol.Position{Line: line, Character: char}
}

func rangeOf(text string, start, end int) protocol.Range {
	return protocol.Range{Start: positionAt(text, start), End: positionAt(text, end)}
}

func overlaps(a, b protocol.Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b protocol.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}
