// Package cursor implements Cursor: an immutable-by-value position handle
// with copy-on-write scratch for captures.
//
// The COW scheme is a shared, refcounted interior that cloned cursors point
// at until one of them writes, at which point only the writer pays for a
// copy. Groups are map-shaped rather than a flat slot array, since
// backreferences and the parallel simulator both need to look groups up by
// capture index and by group-start state identity rather than by a fixed
// slot offset.
package cursor

import "github.com/coregx/coregex/nfa"

// Range is a half-open [Lo, Hi) span of rune offsets into Cursor's input.
type Range struct {
	Lo, Hi int
}

// Cursor is a lightweight value type. A copy made with Clone (or by
// Advance/AdvanceBy) shares its interior until a mutating method is called,
// at which point the interior is deep-copied if it is still shared. A plain
// assignment copy is not counted as a sharer: writes through either copy
// change the interior both of them see.
type Cursor struct {
	interior *interior
}

type interior struct {
	refs int

	input []rune // the complete input string, for absolute anchors and \G
	slice Range  // the line (or whole-string) slice this attempt is confined to

	startIndex int // anchor origin for this match attempt
	index      int // current position

	groups             map[int]Range
	groupsStartIndexes map[*nfa.State]int
	previousMatchIndex int // -1 if no previous match yet
}

// New creates a Cursor over the full input, confined to [sliceLo, sliceHi),
// starting the match attempt at startIndex.
func New(input []rune, sliceLo, sliceHi, startIndex int) Cursor {
	return Cursor{interior: &interior{
		refs:                1,
		input:               input,
		slice:               Range{sliceLo, sliceHi},
		startIndex:          startIndex,
		index:               startIndex,
		groups:              map[int]Range{},
		groupsStartIndexes:  map[*nfa.State]int{},
		previousMatchIndex:  -1,
	}}
}

// Clone returns a Cursor sharing this one's interior; the shared interior's
// refcount is incremented so a later write by either copy triggers a
// one-shot deep copy instead of clobbering the other.
func (c Cursor) Clone() Cursor {
	c.interior.refs++
	return Cursor{interior: c.interior}
}

// own returns an interior exclusively owned by c, copying if it is shared.
// Every mutating method funnels through this.
func (c *Cursor) own() *interior {
	if c.interior.refs == 1 {
		return c.interior
	}
	c.interior.refs--
	cp := &interior{
		refs:                1,
		input:               c.interior.input,
		slice:               c.interior.slice,
		startIndex:          c.interior.startIndex,
		index:               c.interior.index,
		previousMatchIndex:  c.interior.previousMatchIndex,
		groups:              make(map[int]Range, len(c.interior.groups)),
		groupsStartIndexes:  make(map[*nfa.State]int, len(c.interior.groupsStartIndexes)),
	}
	for k, v := range c.interior.groups {
		cp.groups[k] = v
	}
	for k, v := range c.interior.groupsStartIndexes {
		cp.groupsStartIndexes[k] = v
	}
	c.interior = cp
	return cp
}

// StartAt returns a fresh Cursor over the same input/slice, restarting the
// match attempt at idx with no captures recorded.
func (c Cursor) StartAt(idx int) Cursor {
	return Cursor{interior: &interior{
		refs:                1,
		input:               c.interior.input,
		slice:               c.interior.slice,
		startIndex:          idx,
		index:               idx,
		groups:              map[int]Range{},
		groupsStartIndexes:  map[*nfa.State]int{},
		previousMatchIndex:  c.interior.previousMatchIndex,
	}}
}

// Advance returns a copy of c positioned at idx.
func (c Cursor) Advance(idx int) Cursor {
	n := c.Clone()
	n.SetIndex(idx)
	return n
}

// AdvanceBy returns a copy of c advanced by n characters.
func (c Cursor) AdvanceBy(n int) Cursor {
	return c.Advance(c.Index() + n)
}

// Index returns the current position.
func (c Cursor) Index() int { return c.interior.index }

// StartIndex returns the anchor origin for this match attempt.
func (c Cursor) StartIndex() int { return c.interior.startIndex }

// SliceBounds returns the [lo, hi) bounds of the confined slice.
func (c Cursor) SliceBounds() (int, int) { return c.interior.slice.Lo, c.interior.slice.Hi }

// IsEmpty reports whether the confined slice has zero length.
func (c Cursor) IsEmpty() bool { return c.interior.slice.Hi == c.interior.slice.Lo }

// IsAtLastIndex reports whether Index() is the last valid position in the
// confined slice (i.e. one character remains).
func (c Cursor) IsAtLastIndex() bool { return c.interior.index == c.interior.slice.Hi-1 }

// IsAtEnd reports whether the cursor has exhausted the confined slice.
func (c Cursor) IsAtEnd() bool { return c.interior.index >= c.interior.slice.Hi }

// Character returns the rune at the current position, or (0, false) at end.
func (c Cursor) Character() (rune, bool) { return c.CharacterAt(0) }

// CharacterAt returns the rune offsetBy characters from the current
// position, or (0, false) if that is outside the confined slice.
func (c Cursor) CharacterAt(offsetBy int) (rune, bool) {
	idx := c.interior.index + offsetBy
	if idx < c.interior.slice.Lo || idx >= c.interior.slice.Hi {
		return 0, false
	}
	return c.interior.input[idx], true
}

// FullInput returns the complete input the cursor was constructed over,
// independent of the confined slice — absolute anchors (\A, \z, \Z) and \G
// reason about this, not the slice.
func (c Cursor) FullInput() []rune { return c.interior.input }

// Slice returns the rune slice this cursor is confined to (a line, in
// multiline mode, or the whole input otherwise).
func (c Cursor) Slice() []rune {
	return c.interior.input[c.interior.slice.Lo:c.interior.slice.Hi]
}

// Group returns the captured range for capture index idx, if any.
func (c Cursor) Group(idx int) (Range, bool) {
	r, ok := c.interior.groups[idx]
	return r, ok
}

// Groups returns a snapshot of all captured ranges. Callers must not
// mutate the result.
func (c Cursor) Groups() map[int]Range { return c.interior.groups }

// SetGroup records that capture index idx spans [lo, hi), copying the
// interior first if it is shared.
func (c *Cursor) SetGroup(idx int, r Range) {
	c.own().groups[idx] = r
}

// PurgeGroupsBefore removes every recorded group whose lower bound lies
// before lo, as required when the matcher's retry path rewinds the search
// origin.
func (c *Cursor) PurgeGroupsBefore(lo int) {
	i := c.own()
	for idx, r := range i.groups {
		if r.Lo < lo {
			delete(i.groups, idx)
		}
	}
}

// GroupStartIndex returns the position at which start was entered for an
// in-progress capture, if recorded.
func (c Cursor) GroupStartIndex(start *nfa.State) (int, bool) {
	idx, ok := c.interior.groupsStartIndexes[start]
	return idx, ok
}

// SetGroupStartIndex records the position at which a capture group's start
// state was entered, copying the interior first if it is shared.
func (c *Cursor) SetGroupStartIndex(start *nfa.State, idx int) {
	c.own().groupsStartIndexes[start] = idx
}

// ClearGroupStartIndexesFrom removes recorded group-start marks at or after
// lo, mirroring PurgeGroupsBefore for the retry path.
func (c *Cursor) ClearGroupStartIndexesFrom(lo int) {
	i := c.own()
	for s, idx := range i.groupsStartIndexes {
		if idx >= lo {
			delete(i.groupsStartIndexes, s)
		}
	}
}

// PreviousMatchIndex returns the end of the most recent successful match,
// or -1 if there was none (fuels the \G anchor).
func (c Cursor) PreviousMatchIndex() int { return c.interior.previousMatchIndex }

// SetPreviousMatchIndex records the end of the most recent successful
// match, copying the interior first if it is shared.
func (c *Cursor) SetPreviousMatchIndex(idx int) {
	c.own().previousMatchIndex = idx
}

// SetIndex moves the cursor to idx, copying the interior first if shared.
func (c *Cursor) SetIndex(idx int) {
	c.own().index = idx
}
