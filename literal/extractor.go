// Package literal extracts required literal sequences from a compiled
// pattern's AST to drive the prefilter/Aho-Corasick skip optimization in
// engine.
package literal

import "github.com/coregx/coregex/ast"

// ExtractorConfig configures literal extraction limits.
//
// These limits prevent excessive extraction from complex patterns:
//   - MaxLiterals: prevents memory bloat from alternations like (a|b|c|d|...)
//   - MaxLiteralLen: prevents extracting very long literals that hurt cache locality
//   - MaxClassSize: prevents expanding large character classes like [a-z]
type ExtractorConfig struct {
	MaxLiterals   int
	MaxLiteralLen int
	MaxClassSize  int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

// Extractor extracts literal sequences from a pattern's AST.
//
// It analyzes ast.Node trees and extracts:
//   - Prefix literals: literals that must appear at the start of any match
//   - Suffix literals: literals that must appear at the end
//   - Inner literals: any literal that must appear somewhere
//
// Scanning ahead to a literal occurrence is far cheaper than stepping the
// parallel simulator one character at a time, so these feed engine's skip
// optimization.
type Extractor struct {
	config ExtractorConfig
}

// New creates an Extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// ExtractPrefixes extracts literals that must appear at the start of any
// match, unwrapping Root/Group and skipping leading start-of-string anchors.
func (e *Extractor) ExtractPrefixes(n *ast.Node) *Seq {
	return e.walk(n, 0, prefixDir)
}

// ExtractSuffixes extracts literals that must appear at the end of any match.
func (e *Extractor) ExtractSuffixes(n *ast.Node) *Seq {
	return e.walk(n, 0, suffixDir)
}

// ExtractInner extracts any literal required to appear somewhere in a
// match, useful for patterns like ".*foo.*" where "foo" is unavoidable.
func (e *Extractor) ExtractInner(n *ast.Node) *Seq {
	return e.walk(n, 0, innerDir)
}

type direction int

const (
	prefixDir direction = iota
	suffixDir
	innerDir
)

const maxExtractDepth = 100

func (e *Extractor) walk(n *ast.Node, depth int, dir direction) *Seq {
	if n == nil || depth > maxExtractDepth {
		return NewSeq()
	}

	switch n.Unit {
	case ast.UnitRoot, ast.UnitGroup:
		if len(n.Children) == 0 {
			return NewSeq()
		}
		return e.walk(n.Children[0], depth+1, dir)

	case ast.UnitAlternation:
		var lits []Literal
		for _, sub := range n.Children {
			seq := e.walk(sub, depth+1, dir)
			for i := 0; i < seq.Len(); i++ {
				lits = append(lits, seq.Get(i))
				if len(lits) >= e.config.MaxLiterals {
					return NewSeq(lits...)
				}
			}
		}
		return NewSeq(lits...)

	case ast.UnitExpression:
		return e.walkExpression(n.Children, depth, dir)

	case ast.UnitMatch:
		return e.walkMatch(n, false)

	case ast.UnitQuantifier, ast.UnitAnchor, ast.UnitBackreference:
		return NewSeq()

	default:
		return NewSeq()
	}
}

func (e *Extractor) walkMatch(n *ast.Node, incomplete bool) *Seq {
	switch n.MatchKind {
	case ast.MatchCharacter:
		b := []byte(string(n.Character))
		if len(b) > e.config.MaxLiteralLen {
			b = b[:e.config.MaxLiteralLen]
		}
		return NewSeq(NewLiteral(b, !incomplete))
	case ast.MatchCharacterSet:
		return e.expandCharSet(n.CharSet)
	default: // MatchAnyCharacter
		return NewSeq()
	}
}

// walkExpression handles a concatenation's children, coalescing a leading
// (for prefixDir) or trailing (for suffixDir) run of unquantified literal
// characters into a single multi-byte literal.
func (e *Extractor) walkExpression(children []*ast.Node, depth int, dir direction) *Seq {
	if len(children) == 0 {
		return NewSeq()
	}

	if dir == innerDir {
		for _, c := range children {
			seq := e.walk(c, depth+1, dir)
			if !seq.IsEmpty() {
				return seq
			}
		}
		return NewSeq()
	}

	ordered := children
	if dir == suffixDir {
		ordered = reversed(children)
	} else {
		ordered = skipLeadingStartAnchors(ordered)
		if len(ordered) == 0 {
			return NewSeq()
		}
	}

	var run []byte
	i := 0
	for i < len(ordered) && isPlainLiteralChar(ordered[i]) {
		r := ordered[i].Character
		b := []byte(string(r))
		if dir == suffixDir {
			run = append(b, run...)
		} else {
			run = append(run, b...)
		}
		i++
	}
	if i > 0 {
		if len(run) > e.config.MaxLiteralLen {
			if dir == suffixDir {
				run = run[len(run)-e.config.MaxLiteralLen:]
			} else {
				run = run[:e.config.MaxLiteralLen]
			}
		}
		complete := i == len(ordered)
		return NewSeq(NewLiteral(run, complete))
	}

	if i >= len(ordered) {
		return NewSeq()
	}
	first := ordered[i]
	seq := e.walk(first, depth+1, dir)
	if seq.Len() > 0 && i+1 < len(ordered) {
		lits := make([]Literal, seq.Len())
		for j := 0; j < seq.Len(); j++ {
			lits[j] = NewLiteral(seq.Get(j).Bytes, false)
		}
		return NewSeq(lits...)
	}
	return seq
}

func isPlainLiteralChar(n *ast.Node) bool {
	return n.Unit == ast.UnitMatch && n.MatchKind == ast.MatchCharacter
}

func skipLeadingStartAnchors(children []*ast.Node) []*ast.Node {
	i := 0
	for i < len(children) {
		c := children[i]
		if c.Unit == ast.UnitAnchor &&
			(c.AnchorKind == ast.StartOfString || c.AnchorKind == ast.StartOfStringOnly) {
			i++
			continue
		}
		break
	}
	return children[i:]
}

func reversed(in []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, len(in))
	for i, n := range in {
		out[len(in)-1-i] = n
	}
	return out
}

// expandCharSet expands a small, non-negated character class into one
// literal per member rune. Negated classes and classes referencing nested
// predefined classes (\d, \w, ...) are treated as unbounded and skipped,
// since enumerating their complement is not useful for prefiltering.
func (e *Extractor) expandCharSet(set *ast.CharacterSet) *Seq {
	if set == nil || set.Negate || len(set.Classes) > 0 {
		return NewSeq()
	}

	count := 0
	for _, r := range set.Ranges {
		count += int(r.Hi-r.Lo) + 1
		if count > e.config.MaxClassSize {
			return NewSeq()
		}
	}

	var lits []Literal
	for _, r := range set.Ranges {
		for c := r.Lo; c <= r.Hi; c++ {
			b := []byte(string(c))
			if len(b) > e.config.MaxLiteralLen {
				b = b[:e.config.MaxLiteralLen]
			}
			lits = append(lits, NewLiteral(b, true))
			if len(lits) >= e.config.MaxLiterals {
				return NewSeq(lits...)
			}
		}
	}
	return NewSeq(lits...)
}
