package matcher

import (
	"github.com/coregx/coregex/compiler"
	"github.com/coregx/coregex/cursor"
)

// Match is one successful match: the overall span plus each capture
// group's span, 1-indexed (index 0 is never populated here; callers treat
// the overall span as group 0 per convention).
type Match struct {
	Start, End int
	Groups     map[int]cursor.Range
}

// Matcher runs one compiled pattern over an input, dispatching to the
// parallel simulation when the pattern is regular and to the backtracking
// interpreter when it contains backreferences.
type Matcher struct {
	re          *compiler.CompiledRegex
	pike        *pikeVM
	backtracker *backtrackMatcher
}

// CompiledRegex returns the pattern this Matcher was built from.
func (m *Matcher) CompiledRegex() *compiler.CompiledRegex { return m.re }

// New builds a Matcher for a compiled pattern.
func New(re *compiler.CompiledRegex) *Matcher {
	m := &Matcher{re: re}
	if re.IsRegular {
		m.pike = newPikeVM(re)
	} else {
		m.backtracker = newBacktrackMatcher(re)
	}
	return m
}

// ForMatch scans input for successive, non-overlapping matches starting no
// earlier than from, calling callback with each one in order. It stops
// when callback returns false or the input is exhausted. previousMatchEnd
// is the end of the prior match in this scan (-1 if none), feeding the \G
// anchor.
func (m *Matcher) ForMatch(input []rune, from int, callback func(Match) bool) error {
	previousMatchEnd := -1

	for pos := from; pos <= len(input); {
		cur := cursor.New(input, 0, len(input), pos)
		if previousMatchEnd >= 0 {
			cur.SetPreviousMatchIndex(previousMatchEnd)
		}

		found, matched, err := m.Attempt(cur)
		if err != nil {
			return err
		}
		if !matched {
			if m.re.IsFromStartOfString {
				break
			}
			pos++
			continue
		}

		match := toMatch(found)
		previousMatchEnd = match.End
		if !callback(match) {
			return nil
		}

		if match.End == match.Start {
			pos = match.End + 1
		} else {
			pos = match.End
		}
	}
	return nil
}

// Attempt tries a single match anchored at cur's current position. It is
// exported so callers with their own candidate-position search (engine's
// prefilter-driven scan) can drive the simulator directly instead of going
// through ForMatch's character-by-character sweep.
func (m *Matcher) Attempt(cur cursor.Cursor) (cursor.Cursor, bool, error) {
	if m.re.IsRegular {
		found, ok := m.pike.run(cur)
		return found, ok, nil
	}
	return m.backtracker.run(cur)
}

func toMatch(cur cursor.Cursor) Match {
	groups := map[int]cursor.Range{}
	for idx, r := range cur.Groups() {
		groups[idx] = r
	}
	return Match{Start: cur.StartIndex(), End: cur.Index(), Groups: groups}
}
