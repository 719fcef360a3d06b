package matcher

import (
	"github.com/coregx/coregex/compiler"
	"github.com/coregx/coregex/cursor"
	"github.com/coregx/coregex/nfa"
)

// ErrBacktrackLimitExceeded reports that a backtracking search gave up
// after MaxBacktrackSteps transition attempts. Backreference patterns are
// not regular, so the fallback engine has no polynomial-time guarantee
// unlike the PikeVM path, and needs this bounded-work guard instead.
type ErrBacktrackLimitExceeded struct{}

func (ErrBacktrackLimitExceeded) Error() string {
	return "coregex: backtracking limit exceeded"
}

// MaxBacktrackSteps bounds how many transition attempts a single
// backtrackMatcher.run call will make before walk gives up with
// ErrBacktrackLimitExceeded, which run reports as no match.
const MaxBacktrackSteps = 10_000_000

// backtrackMatcher is the fallback interpreter for patterns containing
// backreferences, which are not regular and so cannot be simulated by
// pikeVM. It explores transitions depth-first in priority order, taking
// the first path that reaches the end state.
type backtrackMatcher struct {
	re           *compiler.CompiledRegex
	startToGroup map[*nfa.State]compiler.CaptureGroup
	endToGroup   map[*nfa.State]compiler.CaptureGroup
	steps        int
}

func newBacktrackMatcher(re *compiler.CompiledRegex) *backtrackMatcher {
	m := &backtrackMatcher{
		re:           re,
		startToGroup: map[*nfa.State]compiler.CaptureGroup{},
		endToGroup:   map[*nfa.State]compiler.CaptureGroup{},
	}
	for _, g := range re.Captures {
		m.startToGroup[g.Start] = g
		m.endToGroup[g.End] = g
	}
	return m
}

// run attempts a match anchored at cur's current position. It returns the
// first successful Cursor found by depth-first, priority-ordered search.
// If the step budget is exhausted the attempt reports no match, not an
// error.
func (m *backtrackMatcher) run(cur cursor.Cursor) (cursor.Cursor, bool, error) {
	m.steps = 0
	found, matched, err := m.walk(m.re.Expr.Start, cur)
	if _, limited := err.(ErrBacktrackLimitExceeded); limited {
		return cursor.Cursor{}, false, nil
	}
	return found, matched, err
}

func (m *backtrackMatcher) walk(state *nfa.State, cur cursor.Cursor) (cursor.Cursor, bool, error) {
	m.steps++
	if m.steps > MaxBacktrackSteps {
		return cursor.Cursor{}, false, ErrBacktrackLimitExceeded{}
	}

	if start, ok := m.startToGroup[state]; ok {
		cur.SetGroupStartIndex(start.Start, cur.Index())
	}
	if end, ok := m.endToGroup[state]; ok {
		if startIdx, ok2 := cur.GroupStartIndex(end.Start); ok2 {
			cur.SetGroup(end.Index, cursor.Range{Lo: startIdx, Hi: cur.Index()})
		}
	}

	if state.IsEnd {
		return cur, true, nil
	}

	for _, t := range state.Transitions {
		consumed, ok := t.Condition(cur)
		if !ok {
			continue
		}
		// cur is reused by every remaining iteration of this loop, so each
		// branch needs its own Clone: AdvanceBy already clones internally,
		// but the epsilon (consumed == 0) path would otherwise hand the
		// same unc-loned interior to walk, which could mutate it in place
		// (refs == 1) and leak that write into a sibling transition tried
		// after this one backtracks.
		var next cursor.Cursor
		if consumed > 0 {
			next = cur.AdvanceBy(consumed)
		} else {
			next = cur.Clone()
		}
		if found, matched, err := m.walk(t.End, next); err != nil {
			return cursor.Cursor{}, false, err
		} else if matched {
			return found, true, nil
		}
	}

	return cursor.Cursor{}, false, nil
}
