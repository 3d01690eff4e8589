// Package textedit applies byte-range replacements composed against a single
// immutable source snapshot.
package textedit

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors for edit application.
var (
	ErrOutOfRange = errors.New("edit out of range")
	ErrOverlap    = errors.New("overlapping edits")
)

// Edit replaces src[Start:End] with Text. Start == End is an insertion.
type Edit struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Insert returns an insertion at offset.
func Insert(offset int, text string) Edit {
	return Edit{Start: offset, End: offset, Text: text}
}

// Replace returns a replacement of [start, end).
func Replace(start, end int, text string) Edit {
	return Edit{Start: start, End: end, Text: text}
}

// Delete returns a removal of [start, end).
func Delete(start, end int) Edit {
	return Edit{Start: start, End: end}
}

// IsInsert reports whether the edit removes nothing.
func (e Edit) IsInsert() bool {
	return e.Start == e.End
}

// Conflicts reports whether two edits cannot both be applied to one snapshot.
// Identical edits never conflict; they collapse into one. Insertions conflict
// only with a replacement that strictly contains their offset.
func Conflicts(a, b Edit) bool {
	if a == b {
		return false
	}

	switch {
	case a.IsInsert() && b.IsInsert():
		return false
	case a.IsInsert():
		return b.Start < a.Start && a.Start < b.End
	case b.IsInsert():
		return a.Start < b.Start && b.Start < a.End
	default:
		return a.Start < b.End && b.Start < a.End
	}
}

// Normalize drops duplicate edits and orders the rest by start offset.
// Insertions sort before a replacement starting at the same offset; edits that
// tie otherwise keep their input order.
func Normalize(edits []Edit) []Edit {
	out := make([]Edit, 0, len(edits))

	for _, edit := range edits {
		if !slices.Contains(out, edit) {
			out = append(out, edit)
		}
	}

	slices.SortStableFunc(out, func(a, b Edit) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}

		switch {
		case a.IsInsert() && !b.IsInsert():
			return -1
		case !a.IsInsert() && b.IsInsert():
			return 1
		default:
			return 0
		}
	})

	return out
}

// Apply applies edits to src and returns the new content. All edits refer to
// offsets in src.
func Apply(src []byte, edits []Edit) ([]byte, error) {
	ordered := Normalize(edits)

	for idx, edit := range ordered {
		if edit.Start < 0 || edit.End < edit.Start || edit.End > len(src) {
			return nil, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrOutOfRange, edit.Start, edit.End, len(src))
		}

		for _, other := range ordered[:idx] {
			if Conflicts(edit, other) {
				return nil, fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrOverlap,
					other.Start, other.End, edit.Start, edit.End)
			}
		}
	}

	var buf bytes.Buffer

	buf.Grow(len(src))

	last := 0

	for _, edit := range ordered {
		if edit.Start > last {
			buf.Write(src[last:edit.Start])
		}

		buf.WriteString(edit.Text)

		last = max(last, edit.End)
	}

	buf.Write(src[last:])

	return buf.Bytes(), nil
}

// ApplyFixes applies whole fixes (each a group of edits) in order, skipping
// any fix that conflicts with an already accepted one. It returns the new
// content and the number of fixes applied. Skipped fixes are expected to be
// recomputed and retried on the rewritten source.
func ApplyFixes(src []byte, fixes [][]Edit) ([]byte, int, error) {
	var accepted []Edit

	applied := 0

	for _, fix := range fixes {
		if len(fix) == 0 || conflictsWithAny(fix, accepted) {
			continue
		}

		accepted = append(accepted, fix...)
		applied++
	}

	if applied == 0 {
		return src, 0, nil
	}

	out, err := Apply(src, accepted)
	if err != nil {
		return nil, 0, err
	}

	return out, applied, nil
}

func conflictsWithAny(fix, accepted []Edit) bool {
	for _, edit := range fix {
		for _, other := range accepted {
			if Conflicts(edit, other) {
				return true
			}
		}
	}

	return false
}
