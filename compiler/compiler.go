// Package compiler lowers an AST into a CompiledRegex: an NFA graph of
// nfa.State/nfa.Transition plus the capture-group table and a symbol map
// from state to the AST node that produced it.
//
// Lowering is a recursive descent over the AST with a recursion-depth
// guard, so pathologically nested patterns fail to compile with a clear
// error instead of overflowing the goroutine stack.
package compiler

import (
	"fmt"

	"github.com/coregx/coregex/ast"
	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/nfa"
	"github.com/coregx/coregex/syntax"
)

// CaptureGroup records a capture group's 1-based index and the fragment
// boundary states the compiler wrapped its contents in.
type CaptureGroup struct {
	Index      int
	Start, End *nfa.State
}

// CompiledRegex is the compiler's output: the outermost Expression, the
// ordered capture-group table, and the symbol map from state to
// originating AST node.
type CompiledRegex struct {
	Expr                *nfa.Expression
	Captures            []CaptureGroup
	Symbols             map[*nfa.State]*ast.Node
	IsRegular           bool // no backreferences present
	IsFromStartOfString bool // pattern starts with ^ (unanchored) or \A
	NumStates           int
	NumGroups           int
	Options             syntax.Options
}

const maxCompileDepth = 1000

type backrefUse struct {
	index  int
	offset int
}

type compilerState struct {
	builder  *nfa.Builder
	options  syntax.Options
	captures []CaptureGroup
	symbols  map[*nfa.State]*ast.Node
	backrefs []backrefUse
	depth    int
}

// Compile lowers root (as produced by syntax.Parse) into a CompiledRegex.
func Compile(root *ast.Node, options syntax.Options) (*CompiledRegex, error) {
	if root.Unit != ast.UnitRoot || len(root.Children) != 1 {
		panic("compiler: malformed AST reaching Compile: Root must have exactly one Expression child")
	}

	c := &compilerState{
		builder: nfa.NewBuilder(),
		options: options,
		symbols: map[*nfa.State]*ast.Node{},
	}

	inner, err := c.compile(root.Children[0])
	if err != nil {
		return nil, err
	}

	wrapped := c.wrapImplicitGroup(inner)
	wrapped.End.IsEnd = true

	for _, use := range c.backrefs {
		found := false
		for _, g := range c.captures {
			if g.Index == use.index {
				found = true
				break
			}
		}
		if !found {
			return nil, &syntax.CompileError{
				Message: fmt.Sprintf("backreference to unknown group %d", use.index),
				Offset:  use.offset,
			}
		}
	}

	return &CompiledRegex{
		Expr:                wrapped,
		Captures:            c.captures,
		Symbols:             c.symbols,
		IsRegular:           len(c.backrefs) == 0,
		IsFromStartOfString: startsAnchored(root.Children[0]),
		NumStates:           c.builder.NumStates(),
		NumGroups:           len(c.captures),
		Options:             options,
	}, nil
}

// startsAnchored reports whether the outermost expression begins with a
// whole-string start anchor, letting the matcher skip iterating past the
// first attempt per slice.
func startsAnchored(n *ast.Node) bool {
	for n != nil {
		switch n.Unit {
		case ast.UnitExpression:
			if len(n.Children) == 0 {
				return false
			}
			n = n.Children[0]
		case ast.UnitGroup:
			if len(n.Children) == 0 {
				return false
			}
			n = n.Children[0]
		case ast.UnitAnchor:
			return n.AnchorKind == ast.StartOfStringOnly
		default:
			return false
		}
	}
	return false
}

func (c *compilerState) mark(frag *nfa.Expression, n *ast.Node) *nfa.Expression {
	c.symbols[frag.Start] = n
	c.symbols[frag.End] = n
	return frag
}

func (c *compilerState) compile(n *ast.Node) (*nfa.Expression, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxCompileDepth {
		return nil, &syntax.CompileError{Message: "pattern nested too deeply", Offset: n.Offset}
	}

	switch n.Unit {
	case ast.UnitExpression:
		return c.compileExpression(n)
	case ast.UnitGroup:
		return c.compileGroup(n)
	case ast.UnitAlternation:
		return c.compileAlternation(n)
	case ast.UnitQuantifier:
		return c.compileQuantifier(n)
	case ast.UnitMatch:
		return c.compileMatch(n)
	case ast.UnitAnchor:
		return c.mark(c.singleton(anchorCondition(n.AnchorKind, c.options.Multiline)), n), nil
	case ast.UnitBackreference:
		c.backrefs = append(c.backrefs, backrefUse{index: n.BackreferenceIndex, offset: n.Offset})
		return c.mark(c.singleton(backreferenceCondition(n.BackreferenceIndex, c.options.CaseInsensitive)), n), nil
	default:
		panic(fmt.Sprintf("compiler: unknown AST unit reaching compiler: %v", n.Unit))
	}
}

// singleton builds a minimal fragment: one transition, from a fresh start
// state to a fresh end state, governed by cond.
func (c *compilerState) singleton(cond nfa.Condition) *nfa.Expression {
	start := c.builder.NewState()
	end := c.builder.NewState()
	start.AddTransition(&nfa.Transition{Condition: cond, End: end})
	return &nfa.Expression{Start: start, End: end}
}

// compileExpression concatenates children end to end: Expression node for
// "abc" produces Start(a) --eps--> ... --eps--> End(c).
func (c *compilerState) compileExpression(n *ast.Node) (*nfa.Expression, error) {
	if len(n.Children) == 0 {
		return c.mark(c.emptyFragment(), n), nil
	}

	frags := make([]*nfa.Expression, 0, len(n.Children))
	for _, child := range n.Children {
		f, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		frags = append(frags, f)
	}
	return c.mark(c.concatAll(frags), n), nil
}

// emptyFragment is a two-state fragment that matches the empty string.
func (c *compilerState) emptyFragment() *nfa.Expression {
	start := c.builder.NewState()
	end := c.builder.NewState()
	start.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: end})
	return &nfa.Expression{Start: start, End: end}
}

func (c *compilerState) concatAll(frags []*nfa.Expression) *nfa.Expression {
	if len(frags) == 1 {
		return frags[0]
	}
	for i := 0; i+1 < len(frags); i++ {
		frags[i].End.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: frags[i+1].Start})
	}
	return &nfa.Expression{Start: frags[0].Start, End: frags[len(frags)-1].End}
}

// compileGroup wraps the child expression in a fresh group fragment and
// records a CaptureGroup if the group is capturing.
func (c *compilerState) compileGroup(n *ast.Node) (*nfa.Expression, error) {
	child, err := c.compile(n.Children[0])
	if err != nil {
		return nil, err
	}

	start := c.builder.NewState()
	end := c.builder.NewState()
	start.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: child.Start})
	child.End.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: end})
	frag := &nfa.Expression{Start: start, End: end}

	if n.GroupCapturing {
		c.captures = append(c.captures, CaptureGroup{Index: n.GroupIndex, Start: start, End: end})
	}
	return c.mark(frag, n), nil
}

// wrapImplicitGroup performs the same wrapping as compileGroup but is never
// added to the capture table — the matcher always sees an outer scope
// wrapping the compiled pattern body.
func (c *compilerState) wrapImplicitGroup(inner *nfa.Expression) *nfa.Expression {
	start := c.builder.NewState()
	end := c.builder.NewState()
	start.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: inner.Start})
	inner.End.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: end})
	return &nfa.Expression{Start: start, End: end}
}

// compileAlternation builds one branching start with an epsilon transition
// into each alternative's start, merging into a shared end.
func (c *compilerState) compileAlternation(n *ast.Node) (*nfa.Expression, error) {
	start := c.builder.NewState()
	end := c.builder.NewState()
	for _, alt := range n.Children {
		frag, err := c.compile(alt)
		if err != nil {
			return nil, err
		}
		start.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: frag.Start})
		frag.End.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: end})
	}
	return c.mark(&nfa.Expression{Start: start, End: end}, n), nil
}

func (c *compilerState) compileMatch(n *ast.Node) (*nfa.Expression, error) {
	var cond nfa.Condition
	switch n.MatchKind {
	case ast.MatchCharacter:
		cond = literalCondition(n.Character, c.options.CaseInsensitive)
	case ast.MatchAnyCharacter:
		cond = anyCondition(n.AnyIncludingNewline || c.options.DotMatchesLineSeparators)
	case ast.MatchCharacterSet:
		cond = charsetCondition(buildCharSet(n.CharSet, c.options.CaseInsensitive))
	default:
		panic(fmt.Sprintf("compiler: unknown Match kind reaching compiler: %v", n.MatchKind))
	}
	return c.mark(c.singleton(cond), n), nil
}

func buildCharSet(set *ast.CharacterSet, caseInsensitive bool) charclass.CharSet {
	ranges := make([]charclass.Range, len(set.Ranges))
	for i, r := range set.Ranges {
		ranges[i] = charclass.Range{Lo: r.Lo, Hi: r.Hi}
	}
	members := []charclass.CharSet{charclass.NewRangeSet(ranges, false, caseInsensitive)}
	for _, nested := range set.Classes {
		members = append(members, buildCharSet(nested, caseInsensitive))
	}
	var combined charclass.CharSet = charclass.Union{Members: members}
	if set.Negate {
		combined = charclass.Not{Set: combined}
	}
	return combined
}

// compileQuantifier dispatches on QuantKind.
func (c *compilerState) compileQuantifier(n *ast.Node) (*nfa.Expression, error) {
	child := n.Children[0]

	switch n.QuantKind {
	case ast.ZeroOrOne:
		frag, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		return c.mark(c.wrapOptional(frag), n), nil

	case ast.ZeroOrMore:
		frag, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		return c.mark(c.wrapStar(frag), n), nil

	case ast.OneOrMore:
		first, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		second, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		star := c.wrapStar(second)
		first.End.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: star.Start})
		return c.mark(&nfa.Expression{Start: first.Start, End: star.End}, n), nil

	case ast.Range:
		frag, err := c.compileRange(child, n.QuantLow, n.QuantHigh)
		if err != nil {
			return nil, err
		}
		return c.mark(frag, n), nil

	default:
		panic(fmt.Sprintf("compiler: unknown Quantifier kind reaching compiler: %v", n.QuantKind))
	}
}

// wrapOptional implements '?': the loop edge (into child) is added before
// the exit edge, so the matcher tries to match before skipping (greedy).
func (c *compilerState) wrapOptional(frag *nfa.Expression) *nfa.Expression {
	start := c.builder.NewState()
	end := c.builder.NewState()
	start.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: frag.Start})
	start.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: end})
	frag.End.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: end})
	return &nfa.Expression{Start: start, End: end}
}

// wrapStar implements '*': the split state's loop edge (into child) comes
// before its exit edge, and the child's end loops back into the split.
func (c *compilerState) wrapStar(frag *nfa.Expression) *nfa.Expression {
	split := c.builder.NewState()
	end := c.builder.NewState()
	split.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: frag.Start})
	split.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: end})
	frag.End.AddTransition(&nfa.Transition{Condition: epsilonCondition(), End: split})
	return &nfa.Expression{Start: split, End: end}
}

// compileRange implements {m}, {m,}, {m,n} by recompiling child once per
// required/optional copy.
func (c *compilerState) compileRange(child *ast.Node, low, high int) (*nfa.Expression, error) {
	var mandatory []*nfa.Expression
	for i := 0; i < low; i++ {
		f, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		mandatory = append(mandatory, f)
	}

	if high == -1 {
		tail, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		mandatory = append(mandatory, c.wrapStar(tail))
		return c.concatAll(mandatory), nil
	}

	optionalCount := high - low
	if optionalCount == 0 {
		if len(mandatory) == 0 {
			return c.emptyFragment(), nil
		}
		return c.concatAll(mandatory), nil
	}

	nested, err := c.buildNestedOptional(child, optionalCount)
	if err != nil {
		return nil, err
	}
	if len(mandatory) == 0 {
		return nested, nil
	}
	return c.concatAll(append(mandatory, nested)), nil
}

// buildNestedOptional builds the right-to-left nested-greedy chain
// "(x (x (x)?)?)?", n layers deep: every layer, the outermost included, is
// optional, so the chain matches zero to n copies of x.
func (c *compilerState) buildNestedOptional(child *ast.Node, n int) (*nfa.Expression, error) {
	var cur *nfa.Expression
	for i := 0; i < n; i++ {
		x, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		var layer *nfa.Expression
		if cur == nil {
			layer = x
		} else {
			layer = c.concatAll([]*nfa.Expression{x, cur})
		}
		cur = c.wrapOptional(layer)
	}
	return cur, nil
}
