// Package engine wires the literal/prefilter/ahocorasick stack in front of
// the matcher as a skip optimization: instead of asking the simulator to
// test every position, scan ahead to where a required literal could
// possibly start and only pay for a real attempt there.
//
// Literal extraction feeds either a SIMD prefilter or, once the literal
// alternation grows past a threshold, an Aho-Corasick automaton, so the
// cost of the search scales with the number of candidate starts rather
// than the length of the input.
package engine

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex/ast"
	"github.com/coregx/coregex/compiler"
	"github.com/coregx/coregex/literal"
	"github.com/coregx/coregex/matcher"
	"github.com/coregx/coregex/prefilter"
)

// ahoCorasickThreshold is the literal-alternative count above which an
// Aho-Corasick automaton outperforms Teddy's SIMD multi-substring search.
const ahoCorasickThreshold = 8

// Engine narrows candidate start positions for a compiled pattern before
// invoking its Matcher, when the pattern has a usable literal prefix.
type Engine struct {
	re        *compiler.CompiledRegex
	match     *matcher.Matcher
	pf        prefilter.Prefilter
	automaton *ahocorasick.Automaton
}

// New builds an Engine for a compiled pattern, extracting literal prefixes
// from root to decide whether a prefilter or an Aho-Corasick automaton can
// narrow the search.
func New(root *ast.Node, re *compiler.CompiledRegex) *Engine {
	e := &Engine{re: re, match: matcher.New(re)}

	extractor := literal.New(literal.DefaultConfig())
	prefixes := extractor.ExtractPrefixes(root)
	if prefixes == nil || prefixes.IsEmpty() {
		return e
	}

	// A pattern whose leading atom is the \d shorthand (or an equivalent
	// [0-9] class) expands to the full ten-digit alphabet under
	// MaxClassSize, which is exactly the shape digitPrefilter targets
	// (IP-address-style alternations, numeric leads): prefer its dedicated
	// SIMD digit scan over building an automaton for ten single-byte
	// patterns.
	if isFullDigitAlphabet(prefixes) {
		e.pf = prefilter.NewDigitPrefilter()
		return e
	}

	if prefixes.Len() > ahoCorasickThreshold {
		builder := ahocorasick.NewBuilder()
		for i := 0; i < prefixes.Len(); i++ {
			builder.AddPattern(prefixes.Get(i).Bytes)
		}
		if auto, err := builder.Build(); err == nil {
			e.automaton = auto
			return e
		}
	}

	suffixes := extractor.ExtractSuffixes(root)
	e.pf = prefilter.NewBuilder(prefixes, suffixes).Build()
	return e
}

// ForMatch scans input for successive matches starting no earlier than
// from, using the extracted literal skip optimization to avoid attempting
// the simulator at every position when a prefilter or automaton is
// available. Falls back to the Matcher's own unfiltered sweep otherwise.
func (e *Engine) ForMatch(input []rune, from int, callback func(matcher.Match) bool) error {
	if e.pf == nil && e.automaton == nil {
		return e.match.ForMatch(input, from, callback)
	}

	haystack, runeAt := encodeUTF8(input)
	previousMatchEnd := -1

	bytePos := runeToByte(runeAt, from)
	for bytePos <= len(haystack) {
		candidate := e.findCandidate(haystack, bytePos)
		if candidate < 0 {
			break
		}
		pos := byteToRune(runeAt, candidate)

		cur := newAttemptCursor(input, pos, previousMatchEnd)
		found, matched, err := e.match.Attempt(cur)
		if err != nil {
			return err
		}
		if !matched {
			if e.re.IsFromStartOfString {
				break
			}
			bytePos = runeToByte(runeAt, pos+1)
			continue
		}

		m := matcher.Match{Start: found.StartIndex(), End: found.Index(), Groups: cloneGroups(found)}
		previousMatchEnd = m.End
		if !callback(m) {
			return nil
		}
		next := m.End
		if m.End == m.Start {
			next = m.End + 1
		}
		bytePos = runeToByte(runeAt, next)
	}
	return nil
}

// isFullDigitAlphabet reports whether lits is exactly the ten single-byte
// literals '0'..'9', in any order — the shape literal.Extractor produces
// when expandCharSet sees a \d shorthand or an equivalent [0-9] class.
func isFullDigitAlphabet(lits *literal.Seq) bool {
	if lits.Len() != 10 {
		return false
	}
	var seen [10]bool
	for i := 0; i < lits.Len(); i++ {
		b := lits.Get(i).Bytes
		if len(b) != 1 || b[0] < '0' || b[0] > '9' {
			return false
		}
		seen[b[0]-'0'] = true
	}
	for _, ok := range seen {
		if !ok {
			return false
		}
	}
	return true
}

func (e *Engine) findCandidate(haystack []byte, at int) int {
	if at > len(haystack) {
		return -1
	}
	if e.automaton != nil {
		m := e.automaton.Find(haystack, at)
		if m == nil {
			return -1
		}
		return m.Start
	}
	return e.pf.Find(haystack, at)
}
