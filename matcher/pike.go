// Package matcher implements two execution strategies: a parallel Thompson
// (PikeVM-style) simulation for regular patterns, and a recursive
// backtracking interpreter for patterns that use backreferences.
//
// pike.go runs priority threads in transition-insertion order, using a
// sparse-set "visited this step" guard per thread list to collapse
// duplicate/cyclic epsilon paths, and leftmost-first semantics: the first
// thread to reach the end state wins; higher-priority threads already
// queued for the next step are still allowed to finish, while the
// lower-priority threads after it in the current list are dropped, since
// nothing after it in priority order could ever beat it.
package matcher

import (
	"github.com/coregx/coregex/compiler"
	"github.com/coregx/coregex/cursor"
	"github.com/coregx/coregex/internal/conv"
	"github.com/coregx/coregex/internal/sparse"
	"github.com/coregx/coregex/nfa"
)

// pikeThread is one live path through the NFA: the consuming state it is
// waiting to test transitions from, and the capture/position state bundled
// in its Cursor.
type pikeThread struct {
	state *nfa.State
	cur   cursor.Cursor
}

type threadList struct {
	visited *sparse.SparseSet
	threads []pikeThread
}

func newThreadList(numStates int) *threadList {
	return &threadList{visited: sparse.NewSparseSet(conv.IntToUint32(numStates))}
}

func (tl *threadList) reset() {
	tl.visited.Clear()
	tl.threads = tl.threads[:0]
}

// pikeVM runs the parallel simulation for one compiled, backreference-free
// expression.
type pikeVM struct {
	re           *compiler.CompiledRegex
	startToGroup map[*nfa.State]compiler.CaptureGroup
	endToGroup   map[*nfa.State]compiler.CaptureGroup
	clist, nlist *threadList
}

func newPikeVM(re *compiler.CompiledRegex) *pikeVM {
	vm := &pikeVM{
		re:           re,
		startToGroup: map[*nfa.State]compiler.CaptureGroup{},
		endToGroup:   map[*nfa.State]compiler.CaptureGroup{},
		clist:        newThreadList(re.NumStates),
		nlist:        newThreadList(re.NumStates),
	}
	for _, g := range re.Captures {
		vm.startToGroup[g.Start] = g
		vm.endToGroup[g.End] = g
	}
	return vm
}

// run searches for the leftmost match of re starting at cur's current
// position, trying only that one position (callers sweep start positions).
// It returns the winning Cursor (with Group/previous-match bookkeeping
// populated) and whether a match was found.
func (vm *pikeVM) run(cur cursor.Cursor) (cursor.Cursor, bool) {
	vm.clist.reset()
	vm.nlist.reset()

	vm.addThread(vm.clist, vm.re.Expr.Start, cur)

	var best cursor.Cursor
	matched := false

	for {
		if len(vm.clist.threads) == 0 {
			break
		}

		vm.nlist.reset()

		for _, th := range vm.clist.threads {
			if th.state.IsEnd {
				// Leftmost-first: the earliest (highest-priority) thread to
				// reach the end wins over anything queued after it this
				// step, so stop admitting new (lower-priority) threads for
				// the rest of the step. Higher-priority threads already
				// queued into nlist by threads processed earlier this step
				// survive into future steps and can still overtake this
				// match with a longer one, so the outer loop keeps running
				// until the thread list is exhausted rather than stopping
				// here.
				best = th.cur
				matched = true
				break
			}
			for _, t := range th.state.Transitions {
				consumed, ok := t.Condition(th.cur)
				if !ok || consumed == 0 {
					continue
				}
				vm.addThread(vm.nlist, t.End, th.cur.AdvanceBy(consumed))
			}
		}

		vm.clist, vm.nlist = vm.nlist, vm.clist
	}

	return best, matched
}

// addThread follows every epsilon transition reachable from state without
// consuming input, recording capture boundaries along the way, and adds
// the resulting consuming (or end) states to tl in priority order. visited
// is keyed by state tag to stop infinite epsilon loops (e.g. "(a*)*").
func (vm *pikeVM) addThread(tl *threadList, state *nfa.State, cur cursor.Cursor) {
	tag := conv.IntToUint32(state.Tag)
	if tl.visited.Contains(tag) {
		return
	}
	tl.visited.Insert(tag)

	if g, ok := vm.startToGroup[state]; ok {
		cur.SetGroupStartIndex(g.Start, cur.Index())
	}
	if g, ok := vm.endToGroup[state]; ok {
		if startIdx, ok2 := cur.GroupStartIndex(g.Start); ok2 {
			cur.SetGroup(g.Index, cursor.Range{Lo: startIdx, Hi: cur.Index()})
		}
	}

	if state.IsEnd {
		tl.threads = append(tl.threads, pikeThread{state: state, cur: cur})
		return
	}

	for _, t := range state.Transitions {
		consumed, ok := t.Condition(cur)
		if !ok {
			continue
		}
		// cur is about to be handed to a sibling branch (another iteration
		// of this loop may still run after this one), so each branch gets
		// its own Clone: without it, every branch would share one
		// interior with refs never bumped, and the first branch's
		// own()-triggered in-place write (SetGroupStartIndex/SetGroup on
		// entering the next state) would leak into branches that never
		// took this transition.
		if consumed == 0 {
			vm.addThread(tl, t.End, cur.Clone())
		} else {
			tl.threads = append(tl.threads, pikeThread{state: state, cur: cur.Clone()})
		}
	}
}
