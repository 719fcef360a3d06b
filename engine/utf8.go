package engine

import (
	"unicode/utf8"

	"github.com/coregx/coregex/cursor"
)

// encodeUTF8 renders input as a UTF-8 byte stream for prefilter/Aho-Corasick
// search, alongside runeAt, a length-len(input)+1 table where runeAt[i] is
// the byte offset of rune i (runeAt[len(input)] is len(haystack)). The
// matcher itself always works in rune space; this table is only used to
// translate a byte-space prefilter hit back to a rune index.
func encodeUTF8(input []rune) (haystack []byte, runeAt []int) {
	runeAt = make([]int, len(input)+1)
	buf := make([]byte, 0, len(input))
	var tmp [utf8.UTFMax]byte
	for i, r := range input {
		runeAt[i] = len(buf)
		n := utf8.EncodeRune(tmp[:], r)
		buf = append(buf, tmp[:n]...)
	}
	runeAt[len(input)] = len(buf)
	return buf, runeAt
}

// runeToByte converts a rune index into its byte offset using runeAt,
// clamping to the haystack's end for an index past the last rune.
func runeToByte(runeAt []int, runeIdx int) int {
	if runeIdx >= len(runeAt) {
		return runeAt[len(runeAt)-1]
	}
	if runeIdx < 0 {
		return 0
	}
	return runeAt[runeIdx]
}

// byteToRune converts a byte offset back into a rune index via binary
// search over runeAt, rounding up to the next rune boundary if byteIdx
// lands mid-rune (a prefilter hit always lands on a boundary in practice,
// since it matched an extracted literal's own rune-aligned bytes, but the
// search stays safe regardless).
func byteToRune(runeAt []int, byteIdx int) int {
	lo, hi := 0, len(runeAt)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if runeAt[mid] < byteIdx {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func newAttemptCursor(input []rune, pos, previousMatchEnd int) cursor.Cursor {
	cur := cursor.New(input, 0, len(input), pos)
	if previousMatchEnd >= 0 {
		cur.SetPreviousMatchIndex(previousMatchEnd)
	}
	return cur
}

func cloneGroups(cur cursor.Cursor) map[int]cursor.Range {
	groups := map[int]cursor.Range{}
	for idx, r := range cur.Groups() {
		groups[idx] = r
	}
	return groups
}
