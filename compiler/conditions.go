package compiler

import (
	"unicode"

	"github.com/coregx/coregex/ast"
	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/cursor"
	"github.com/coregx/coregex/nfa"
)

// asCursor type-asserts the opaque nfa.Condition argument back to the one
// concrete implementation this repository has. nfa stays free of a direct
// dependency on cursor so the data-model package never needs to know about
// copy-on-write bookkeeping.
func asCursor(cur any) cursor.Cursor { return cur.(cursor.Cursor) }

// epsilonCondition always fires without consuming input.
func epsilonCondition() nfa.Condition {
	return func(any) (int, bool) { return 0, true }
}

func foldEqual(a, b rune, caseInsensitive bool) bool {
	if a == b {
		return true
	}
	if !caseInsensitive {
		return false
	}
	if toUpperASCII(a) == toUpperASCII(b) {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

func literalCondition(want rune, caseInsensitive bool) nfa.Condition {
	return func(c any) (int, bool) {
		cur := asCursor(c)
		r, ok := cur.Character()
		if !ok || !foldEqual(r, want, caseInsensitive) {
			return 0, false
		}
		return 1, true
	}
}

// literalStringCondition matches several literal characters in one
// transition, a run-length optimization that lets a single Transition
// consume more than one character.
func literalStringCondition(want []rune, caseInsensitive bool) nfa.Condition {
	return func(c any) (int, bool) {
		cur := asCursor(c)
		for i, w := range want {
			r, ok := cur.CharacterAt(i)
			if !ok || !foldEqual(r, w, caseInsensitive) {
				return 0, false
			}
		}
		return len(want), true
	}
}

func anyCondition(includingNewline bool) nfa.Condition {
	set := charclass.AnyCharSet{IncludingNewline: includingNewline}
	return func(c any) (int, bool) {
		cur := asCursor(c)
		r, ok := cur.Character()
		if !ok || !set.Contains(r) {
			return 0, false
		}
		return 1, true
	}
}

func charsetCondition(set charclass.CharSet) nfa.Condition {
	return func(c any) (int, bool) {
		cur := asCursor(c)
		r, ok := cur.Character()
		if !ok || !set.Contains(r) {
			return 0, false
		}
		return 1, true
	}
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// anchorCondition builds the Condition for kind. multiline makes
// ast.StartOfString ('^') and ast.EndOfString ('$') also bind at line
// boundaries within the slice; the whole-string-only anchors (\A, \z, \Z)
// are unaffected.
func anchorCondition(kind ast.AnchorKind, multiline bool) nfa.Condition {
	switch kind {
	case ast.StartOfString:
		return func(c any) (int, bool) {
			cur := asCursor(c)
			lo, _ := cur.SliceBounds()
			if cur.Index() == lo {
				return 0, true
			}
			if !multiline {
				return 0, false
			}
			before, ok := cur.CharacterAt(-1)
			return 0, ok && before == '\n'
		}
	case ast.StartOfStringOnly:
		return func(c any) (int, bool) {
			return 0, asCursor(c).Index() == 0
		}
	case ast.EndOfString:
		return func(c any) (int, bool) {
			cur := asCursor(c)
			_, hi := cur.SliceBounds()
			if cur.Index() == hi {
				return 0, true
			}
			if !multiline {
				return 0, false
			}
			after, ok := cur.CharacterAt(0)
			return 0, ok && after == '\n'
		}
	case ast.EndOfStringOnly:
		return func(c any) (int, bool) {
			cur := asCursor(c)
			return 0, cur.Index() == len(cur.FullInput())
		}
	case ast.EndOfStringOnlyNotNewline:
		return func(c any) (int, bool) {
			cur := asCursor(c)
			n := len(cur.FullInput())
			if cur.Index() == n {
				return 0, true
			}
			if cur.Index() == n-1 {
				r, _ := cur.CharacterAt(0)
				return 0, r == '\n'
			}
			return 0, false
		}
	case ast.WordBoundary, ast.NonWordBoundary:
		want := kind == ast.WordBoundary
		return func(c any) (int, bool) {
			cur := asCursor(c)
			before, hasBefore := cur.CharacterAt(-1)
			after, hasAfter := cur.CharacterAt(0)
			isBoundary := (hasBefore && isWordRune(before)) != (hasAfter && isWordRune(after))
			return 0, isBoundary == want
		}
	case ast.PreviousMatchEnd:
		return func(c any) (int, bool) {
			cur := asCursor(c)
			if cur.PreviousMatchIndex() < 0 {
				return 0, cur.Index() == cur.StartIndex()
			}
			return 0, cur.Index() == cur.PreviousMatchIndex()
		}
	default:
		return func(any) (int, bool) { return 0, false }
	}
}

// backreferenceCondition compares the slice captured by group idx literally
// against the input starting at the cursor.
func backreferenceCondition(idx int, caseInsensitive bool) nfa.Condition {
	return func(c any) (int, bool) {
		cur := asCursor(c)
		g, ok := cur.Group(idx)
		if !ok {
			return 0, false
		}
		length := g.Hi - g.Lo
		full := cur.FullInput()
		for i := 0; i < length; i++ {
			want := full[g.Lo+i]
			got, ok := cur.CharacterAt(i)
			if !ok || !foldEqual(got, want, caseInsensitive) {
				return 0, false
			}
		}
		return length, true
	}
}
