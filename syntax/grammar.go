// Package syntax implements the regex grammar: parsers, built from the
// combinator kernel, that recognize the pattern's surface syntax and
// produce an ast.Node tree.
package syntax

import (
	"strings"

	"github.com/coregx/coregex/ast"
	"github.com/coregx/coregex/combinator"
)

// Parse compiles pattern's surface syntax into an AST. It does not validate
// backreference targets or capture-group contiguity — that is the
// compiler's job.
func Parse(pattern string, options Options) (*ast.Node, error) {
	if pattern == "" {
		return nil, newCompileError(0, "empty pattern")
	}

	g := &grammar{in: combinator.NewInput(pattern), options: options}
	expr, ok, err := g.expression()
	if err != nil {
		return nil, asCompileError(err)
	}
	if !ok {
		return nil, newCompileError(g.in.Pos(), "expected expression")
	}
	if !g.in.AtEnd() {
		return nil, newCompileError(g.in.Pos(), "unbalanced ')'")
	}
	return ast.NewRoot(expr), nil
}

func asCompileError(err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*combinator.ParseError); ok {
		return &CompileError{Message: pe.Message, Offset: pe.Offset}
	}
	return err
}

type grammar struct {
	in         *combinator.Input
	options    Options
	groupCount int
}

const specialChars = `(|)*+?.^$[]{}\`

// expression := concatenation ( '|' concatenation )*
func (g *grammar) expression() (*ast.Node, bool, error) {
	offset := g.in.Pos()
	first, err := g.concatenation()
	if err != nil {
		return nil, false, err
	}
	alts := []*ast.Node{first}
	for {
		_, ok, err := combinator.Literal("|")(g.in)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		next, err := g.concatenation()
		if err != nil {
			return nil, false, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return first, true, nil
	}
	node := ast.NewAlternation(alts)
	node.Offset = offset
	return node, true, nil
}

// concatenation := atom*
func (g *grammar) concatenation() (*ast.Node, error) {
	offset := g.in.Pos()
	var atoms []*ast.Node
	for {
		a, ok, err := g.atom()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		atoms = append(atoms, a)
	}
	node := ast.NewExpression(atoms)
	node.Offset = offset
	return node, nil
}

// atom := ( group | match | backreference | anchor ) quantifier?
func (g *grammar) atom() (*ast.Node, bool, error) {
	if g.in.AtEnd() {
		return nil, false, nil
	}

	if r, ok := g.peekUnescaped(); ok && strings.ContainsRune("*+?", r) {
		return nil, false, newCompileError(g.in.Pos(), "nothing to repeat: %q", r)
	}
	if r, ok := g.peekUnescaped(); ok && r == '{' && g.looksLikeQuantifierBrace() {
		return nil, false, newCompileError(g.in.Pos(), "nothing to repeat: %q", r)
	}

	base, ok, err := g.oneAtomBase()
	if err != nil || !ok {
		return nil, ok, err
	}
	return g.applyQuantifier(base)
}

func (g *grammar) peekUnescaped() (rune, bool) {
	start := g.in.Pos()
	r, ok, _ := combinator.Char(g.in)
	g.in.SetPos(start)
	return r, ok
}

// looksLikeQuantifierBrace reports whether the '{' at the current position
// opens a well-formed {m}, {m,}, {m,n} range (as opposed to a literal '{').
func (g *grammar) looksLikeQuantifierBrace() bool {
	start := g.in.Pos()
	defer g.in.SetPos(start)
	_, _, ok, _ := g.parseBraceRange()
	return ok
}

func (g *grammar) oneAtomBase() (*ast.Node, bool, error) {
	if node, ok, err := g.group(); err != nil || ok {
		return node, ok, err
	}
	if node, ok, err := g.anchor(); err != nil || ok {
		return node, ok, err
	}
	if node, ok, err := g.backreference(); err != nil || ok {
		return node, ok, err
	}
	if node, ok, err := g.match(); err != nil || ok {
		return node, ok, err
	}
	return nil, false, nil
}

// group := '(' ( '?:' )? expression ')'
func (g *grammar) group() (*ast.Node, bool, error) {
	start := g.in.Pos()
	_, ok, err := combinator.Literal("(")(g.in)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	_, nonCapturing, err := combinator.Literal("?:")(g.in)
	if err != nil {
		g.in.SetPos(start)
		return nil, false, err
	}

	index := 0
	if !nonCapturing {
		g.groupCount++
		index = g.groupCount
	}

	child, err := g.concatenation()
	if err != nil {
		g.in.SetPos(start)
		return nil, false, err
	}

	_, closed, err := combinator.Literal(")")(g.in)
	if err != nil {
		g.in.SetPos(start)
		return nil, false, err
	}
	if !closed {
		return nil, false, newCompileError(g.in.Pos(), "unbalanced '(': expected ')'")
	}

	return ast.NewGroup(child, index, !nonCapturing, start), true, nil
}

// anchor := '^' | '$' | '\A' | '\z' | '\Z' | '\b' | '\B' | '\G'
func (g *grammar) anchor() (*ast.Node, bool, error) {
	start := g.in.Pos()

	if _, ok, _ := combinator.Literal("^")(g.in); ok {
		kind := ast.StartOfString
		if !g.options.Multiline {
			kind = ast.StartOfStringOnly
		}
		return ast.NewAnchor(kind, start), true, nil
	}
	if _, ok, _ := combinator.Literal("$")(g.in); ok {
		kind := ast.EndOfString
		if !g.options.Multiline {
			kind = ast.EndOfStringOnlyNotNewline
		}
		return ast.NewAnchor(kind, start), true, nil
	}

	escStart := g.in.Pos()
	if _, ok, _ := combinator.Literal(`\`)(g.in); !ok {
		return nil, false, nil
	}
	r, ok, _ := combinator.Char(g.in)
	if !ok {
		return nil, false, newCompileError(escStart, "dangling escape at end of pattern")
	}
	var kind ast.AnchorKind
	switch r {
	case 'A':
		kind = ast.StartOfStringOnly
	case 'z':
		kind = ast.EndOfStringOnly
	case 'Z':
		kind = ast.EndOfStringOnlyNotNewline
	case 'b':
		kind = ast.WordBoundary
	case 'B':
		kind = ast.NonWordBoundary
	case 'G':
		kind = ast.PreviousMatchEnd
	default:
		g.in.SetPos(escStart)
		return nil, false, nil
	}
	return ast.NewAnchor(kind, escStart), true, nil
}

// backreference := '\' DecimalDigit+   (only when not one of the anchor/class letters)
func (g *grammar) backreference() (*ast.Node, bool, error) {
	start := g.in.Pos()
	_, ok, _ := combinator.Literal(`\`)(g.in)
	if !ok {
		return nil, false, nil
	}
	n, ok, _ := combinator.Number(g.in)
	if !ok {
		g.in.SetPos(start)
		return nil, false, nil
	}
	return ast.NewBackreference(n, start), true, nil
}

// match := character | '.' | charset
func (g *grammar) match() (*ast.Node, bool, error) {
	start := g.in.Pos()

	if _, ok, _ := combinator.Literal(".")(g.in); ok {
		return ast.NewMatchAny(g.options.DotMatchesLineSeparators, start), true, nil
	}

	if set, ok, err := g.bracketCharSet(); err != nil {
		return nil, false, err
	} else if ok {
		return ast.NewMatchCharacterSet(set, start), true, nil
	}
	if set, ok := predefinedClass(g.peekEscapeLetter()); ok {
		g.consumeEscapeLetter()
		return ast.NewMatchCharacterSet(set, start), true, nil
	}

	r, ok, err := g.literalRune()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return ast.NewMatchCharacter(r, start), true, nil
}

// literalRune matches a single literal character, including a
// backslash-escaped one (\n, \t, \\, \., ...). Returns false (no error) if
// the current position starts an anchor/class/backreference escape instead.
func (g *grammar) literalRune() (rune, bool, error) {
	start := g.in.Pos()
	r, ok, _ := combinator.Char(g.in)
	if !ok {
		return 0, false, nil
	}
	if r == '\\' {
		esc, ok, _ := combinator.Char(g.in)
		if !ok {
			return 0, false, newCompileError(start, "dangling escape at end of pattern")
		}
		if v, special := escapeLiteral(esc); special {
			return v, true, nil
		}
		if isAnchorOrClassLetter(esc) {
			g.in.SetPos(start)
			return 0, false, nil
		}
		return esc, true, nil
	}
	if strings.ContainsRune(")|", r) {
		g.in.SetPos(start)
		return 0, false, nil
	}
	return r, true, nil
}

func escapeLiteral(r rune) (rune, bool) {
	switch r {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	case '0':
		return 0, true
	}
	return 0, false
}

func isAnchorOrClassLetter(r rune) bool {
	switch r {
	case 'A', 'z', 'Z', 'b', 'B', 'G', 'd', 'D', 'w', 'W', 's', 'S':
		return true
	}
	return r >= '1' && r <= '9'
}

func (g *grammar) peekEscapeLetter() rune {
	start := g.in.Pos()
	defer g.in.SetPos(start)
	if _, ok, _ := combinator.Literal(`\`)(g.in); !ok {
		return 0
	}
	r, ok, _ := combinator.Char(g.in)
	if !ok {
		return 0
	}
	return r
}

func (g *grammar) consumeEscapeLetter() {
	_, _, _ = combinator.Literal(`\`)(g.in)
	_, _, _ = combinator.Char(g.in)
}

func predefinedClass(letter rune) (*ast.CharacterSet, bool) {
	switch letter {
	case 'd':
		return &ast.CharacterSet{Ranges: []ast.CharRange{{'0', '9'}}}, true
	case 'D':
		return &ast.CharacterSet{Negate: true, Ranges: []ast.CharRange{{'0', '9'}}}, true
	case 'w':
		return wordSet(false), true
	case 'W':
		return wordSet(true), true
	case 's':
		return &ast.CharacterSet{Ranges: spaceRanges()}, true
	case 'S':
		return &ast.CharacterSet{Negate: true, Ranges: spaceRanges()}, true
	}
	return nil, false
}

func wordSet(negate bool) *ast.CharacterSet {
	return &ast.CharacterSet{
		Negate: negate,
		Ranges: []ast.CharRange{
			{'a', 'z'}, {'A', 'Z'}, {'0', '9'}, {'_', '_'},
		},
	}
}

func spaceRanges() []ast.CharRange {
	return []ast.CharRange{{' ', ' '}, {'\t', '\t'}, {'\n', '\n'}, {'\r', '\r'}, {'\f', '\f'}, {'\v', '\v'}}
}

// bracketCharSet := '[' '^'? ( range | escapedClass | literal )+ ']'
func (g *grammar) bracketCharSet() (*ast.CharacterSet, bool, error) {
	start := g.in.Pos()
	if _, ok, _ := combinator.Literal("[")(g.in); !ok {
		return nil, false, nil
	}

	set := &ast.CharacterSet{}
	if _, ok, _ := combinator.Literal("^")(g.in); ok {
		set.Negate = true
	}

	any := false
	for {
		if _, ok, _ := combinator.Literal("]")(g.in); ok {
			if !any {
				g.in.SetPos(start)
				return nil, false, newCompileError(start, "empty character class")
			}
			return set, true, nil
		}
		if g.in.AtEnd() {
			return nil, false, newCompileError(start, "unbalanced '[': expected ']'")
		}

		if letter := g.peekEscapeLetter(); letter != 0 {
			if nested, ok := predefinedClass(letter); ok {
				g.consumeEscapeLetter()
				set.Classes = append(set.Classes, nested)
				any = true
				continue
			}
		}

		lo, ok, err := g.classLiteralRune()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, newCompileError(g.in.Pos(), "invalid character class")
		}
		any = true

		rangeStart := g.in.Pos()
		if _, ok, _ := combinator.Literal("-")(g.in); ok {
			if peek, hasNext := g.peekUnescaped(); hasNext && peek == ']' {
				g.in.SetPos(rangeStart)
				set.Ranges = append(set.Ranges, ast.CharRange{Lo: lo, Hi: lo})
				continue
			}
			hi, ok, err := g.classLiteralRune()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				g.in.SetPos(rangeStart)
				set.Ranges = append(set.Ranges, ast.CharRange{Lo: lo, Hi: lo})
				continue
			}
			if hi < lo {
				return nil, false, newCompileError(rangeStart, "invalid character class range: %c-%c", lo, hi)
			}
			set.Ranges = append(set.Ranges, ast.CharRange{Lo: lo, Hi: hi})
			continue
		}
		set.Ranges = append(set.Ranges, ast.CharRange{Lo: lo, Hi: lo})
	}
}

// classLiteralRune reads one literal character inside a bracket expression,
// honoring backslash escapes but not anchors/backreferences (those letters
// are literal here, e.g. [\b] is a literal 'b' preceded nowhere specially
// except standard escapes below).
func (g *grammar) classLiteralRune() (rune, bool, error) {
	start := g.in.Pos()
	r, ok, _ := combinator.Char(g.in)
	if !ok {
		return 0, false, nil
	}
	if r == '\\' {
		esc, ok, _ := combinator.Char(g.in)
		if !ok {
			return 0, false, newCompileError(start, "dangling escape at end of pattern")
		}
		if v, special := escapeLiteral(esc); special {
			return v, true, nil
		}
		return esc, true, nil
	}
	return r, true, nil
}

// quantifier := '?' | '*' | '+' | '{' number ( ',' number? )? '}'
func (g *grammar) applyQuantifier(child *ast.Node) (*ast.Node, bool, error) {
	start := g.in.Pos()

	if _, ok, _ := combinator.Literal("?")(g.in); ok {
		return ast.NewQuantifier(child, ast.ZeroOrOne, 0, 1, start), true, nil
	}
	if _, ok, _ := combinator.Literal("*")(g.in); ok {
		return ast.NewQuantifier(child, ast.ZeroOrMore, 0, -1, start), true, nil
	}
	if _, ok, _ := combinator.Literal("+")(g.in); ok {
		return ast.NewQuantifier(child, ast.OneOrMore, 1, -1, start), true, nil
	}

	if low, high, ok, err := g.parseBraceRange(); err != nil {
		return nil, false, err
	} else if ok {
		if high != -1 && low > high {
			return nil, false, newCompileError(start, "invalid quantifier range: {%d,%d}", low, high)
		}
		return ast.NewQuantifier(child, ast.Range, low, high, start), true, nil
	}

	return child, true, nil
}

// parseBraceRange parses '{' number (',' number?)? '}' without interpreting
// it; callers validate low<=high. Rewinds fully on any non-match so it can
// be used for lookahead (looksLikeQuantifierBrace).
func (g *grammar) parseBraceRange() (low, high int, ok bool, err error) {
	start := g.in.Pos()
	if _, matched, _ := combinator.Literal("{")(g.in); !matched {
		return 0, 0, false, nil
	}
	m, matched, _ := combinator.Number(g.in)
	if !matched {
		g.in.SetPos(start)
		return 0, 0, false, nil
	}
	low, high = m, m
	if _, matched, _ := combinator.Literal(",")(g.in); matched {
		if n, matched, _ := combinator.Number(g.in); matched {
			high = n
		} else {
			high = -1
		}
	}
	if _, matched, _ := combinator.Literal("}")(g.in); !matched {
		g.in.SetPos(start)
		return 0, 0, false, nil
	}
	return low, high, true, nil
}
