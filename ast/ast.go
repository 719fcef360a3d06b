// Package ast defines the tagged tree the grammar parser produces and the
// compiler consumes.
//
// Nodes are tagged variants rather than a class hierarchy: a Node carries a
// Unit discriminator, payload fields relevant to that unit, and an ordered
// list of Children. Compiler and extractor code dispatch on Unit the way
// a visitor would dispatch on a sealed class hierarchy in a language that
// has one.
package ast

import "fmt"

// Unit discriminates the kind of a Node.
type Unit int

const (
	UnitRoot Unit = iota
	UnitExpression
	UnitGroup
	UnitAlternation
	UnitQuantifier
	UnitMatch
	UnitAnchor
	UnitBackreference
)

func (u Unit) String() string {
	switch u {
	case UnitRoot:
		return "Root"
	case UnitExpression:
		return "Expression"
	case UnitGroup:
		return "Group"
	case UnitAlternation:
		return "Alternation"
	case UnitQuantifier:
		return "Quantifier"
	case UnitMatch:
		return "Match"
	case UnitAnchor:
		return "Anchor"
	case UnitBackreference:
		return "Backreference"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// QuantifierKind enumerates the shapes a Quantifier node can take.
type QuantifierKind int

const (
	ZeroOrMore QuantifierKind = iota
	OneOrMore
	ZeroOrOne
	Range // [Low, High]; High == -1 means unbounded ("{m,}")
)

// MatchKind enumerates the shapes a Match node can take.
type MatchKind int

const (
	MatchCharacter MatchKind = iota
	MatchAnyCharacter
	MatchCharacterSet
)

// AnchorKind enumerates the shapes an Anchor node can take.
type AnchorKind int

const (
	StartOfString AnchorKind = iota
	StartOfStringOnly
	EndOfString
	EndOfStringOnly
	EndOfStringOnlyNotNewline
	WordBoundary
	NonWordBoundary
	PreviousMatchEnd
)

// CharRange is an inclusive rune range used inside a CharacterSet.
type CharRange struct {
	Lo, Hi rune
}

// CharacterSet is the AST-level representation of a bracket expression or
// predefined class (\d, \w, \s, ...). Negate inverts membership. Ranges and
// singleton runes are both expressed as CharRange (Lo == Hi for singletons).
// Classes holds nested predefined classes referenced inside a bracket
// expression (e.g. [\d_] holds a literal '_' range plus the \d class).
type CharacterSet struct {
	Negate bool
	Ranges []CharRange
	// Classes references predefined classes folded into a bracket
	// expression, preserved separately so case-insensitive folding and
	// negation can be applied uniformly by the compiler.
	Classes []*CharacterSet
}

// Node is a single tagged AST node.
type Node struct {
	Unit     Unit
	Children []*Node

	// Group
	GroupIndex      int
	GroupCapturing  bool

	// Quantifier
	QuantKind QuantifierKind
	QuantLow  int
	QuantHigh int // -1 = unbounded

	// Match
	MatchKind            MatchKind
	Character            rune
	AnyIncludingNewline   bool
	CharSet              *CharacterSet

	// Anchor
	AnchorKind AnchorKind

	// Backreference
	BackreferenceIndex int

	// Offset is the 0-based rune offset in the source pattern where this
	// node began, used to annotate compile errors that are only detected
	// after parsing succeeds (e.g. "backreference to unknown group").
	Offset int
}

func leaf(unit Unit, offset int) *Node {
	return &Node{Unit: unit, Offset: offset}
}

// NewRoot builds a Root node wrapping a single Expression child.
func NewRoot(expr *Node) *Node {
	return &Node{Unit: UnitRoot, Children: []*Node{expr}}
}

// NewExpression builds a concatenation node from ordered atoms.
func NewExpression(atoms []*Node) *Node {
	return &Node{Unit: UnitExpression, Children: atoms}
}

// NewAlternation builds an alternation node from ordered alternatives.
func NewAlternation(alts []*Node) *Node {
	return &Node{Unit: UnitAlternation, Children: alts}
}

// NewGroup wraps child in a Group node. index is 0 for non-capturing groups.
func NewGroup(child *Node, index int, capturing bool, offset int) *Node {
	return &Node{
		Unit:           UnitGroup,
		Children:       []*Node{child},
		GroupIndex:     index,
		GroupCapturing: capturing,
		Offset:         offset,
	}
}

// NewQuantifier wraps child in a Quantifier node.
func NewQuantifier(child *Node, kind QuantifierKind, low, high int, offset int) *Node {
	return &Node{
		Unit:      UnitQuantifier,
		Children:  []*Node{child},
		QuantKind: kind,
		QuantLow:  low,
		QuantHigh: high,
		Offset:    offset,
	}
}

// NewMatchCharacter builds a single-character Match node.
func NewMatchCharacter(c rune, offset int) *Node {
	n := leaf(UnitMatch, offset)
	n.MatchKind = MatchCharacter
	n.Character = c
	return n
}

// NewMatchAny builds a "." Match node.
func NewMatchAny(includingNewline bool, offset int) *Node {
	n := leaf(UnitMatch, offset)
	n.MatchKind = MatchAnyCharacter
	n.AnyIncludingNewline = includingNewline
	return n
}

// NewMatchCharacterSet builds a character-class Match node.
func NewMatchCharacterSet(set *CharacterSet, offset int) *Node {
	n := leaf(UnitMatch, offset)
	n.MatchKind = MatchCharacterSet
	n.CharSet = set
	return n
}

// NewAnchor builds an Anchor node.
func NewAnchor(kind AnchorKind, offset int) *Node {
	n := leaf(UnitAnchor, offset)
	n.AnchorKind = kind
	return n
}

// NewBackreference builds a Backreference node.
func NewBackreference(index int, offset int) *Node {
	n := leaf(UnitBackreference, offset)
	n.BackreferenceIndex = index
	return n
}
