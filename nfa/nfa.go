// Package nfa defines the NFA data model: states identified by a stable
// tag, linked by conditional transitions, some of which consume no input
// (epsilon transitions).
//
// States are reference types rather than indices into a flat array: state
// identity is reference identity, and equality is by tag. The PikeVM in
// matcher/ keys its sparse-set visited-tracking on that tag; capture
// bookkeeping in both matchers is keyed by *State.
package nfa

// State is a single node of the compiled NFA. Tag is a stable, unique (per
// compiled regex) integer used to index bitsets (*sparse.SparseSet) sized
// to the number of states.
type State struct {
	Tag         int
	IsEnd       bool
	Transitions []*Transition
}

// NewState allocates a state with the given tag. Tags are assigned by a
// Builder in compile order; callers should not construct States directly
// outside of compiler.
func NewState(tag int) *State {
	return &State{Tag: tag}
}

// AddTransition appends an outgoing transition. Transitions are explored in
// the order they were added: for greedy quantifiers the compiler adds the
// loop edge before the exit edge, so the matcher tries looping first.
func (s *State) AddTransition(t *Transition) {
	s.Transitions = append(s.Transitions, t)
}

// Transition pairs a Condition with the state it leads to.
type Transition struct {
	Condition Condition
	End       *State
}

// Condition tests whether a transition fires at the cursor's current
// position. It returns the number of characters consumed (0 for an
// epsilon transition, >0 for a transition that consumes input) and whether
// the transition is taken at all.
//
// Cur is kept as an opaque interface{} here to avoid an import cycle
// between nfa and cursor (cursor.Cursor is the only implementation in this
// repository); compiler's asCursor helper asserts it back to a
// cursor.Cursor inside each condition it builds.
type Condition func(cur any) (consumed int, ok bool)

// Expression is a compiled fragment: a sub-NFA with a designated Start and
// End state. Every path from Start reaches End along some sequence of
// transitions; End.IsEnd is only set true for the outermost expression
// after the compiler's final wrap.
type Expression struct {
	Start *State
	End   *State
}

// Builder allocates states with sequential tags, so a freshly compiled
// regex always has a dense, zero-based tag space suitable for sizing
// sparse sets.
type Builder struct {
	nextTag int
}

// NewBuilder creates an empty state-tag allocator.
func NewBuilder() *Builder { return &Builder{} }

// NewState allocates a new state with the next sequential tag.
func (b *Builder) NewState() *State {
	s := NewState(b.nextTag)
	b.nextTag++
	return s
}

// NumStates returns how many states have been allocated so far — the size
// a sparse set covering this builder's states must be allocated with.
func (b *Builder) NumStates() int { return b.nextTag }
