// Package coregex provides a regex engine built from a hand-written
// parser, a Thompson-construction NFA, and two execution strategies: a
// parallel (PikeVM-style) simulation for regular patterns, and a
// backtracking interpreter for patterns that use backreferences.
//
// coregex achieves its speed on literal-anchored patterns through the same
// kind of prefilter stack as the library it grew out of: extracted
// literals feed SIMD-accelerated memchr/memmem/Teddy search or, for large
// literal alternations, an Aho-Corasick automaton, narrowing candidate
// start positions before the simulator ever runs.
//
// Basic usage:
//
//	re, err := coregex.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if re.MatchString("hello 123") {
//	    fmt.Println("matched!")
//	}
//
// Advanced usage — custom options and the core streaming primitive:
//
//	opts := coregex.DefaultOptions()
//	opts.CaseInsensitive = true
//	re, err := coregex.CompileOptions(`hello`, opts)
//
//	re.ForMatch("Hello HELLO", func(m coregex.Match) bool {
//	    fmt.Println(m.Start, m.End)
//	    return true // keep scanning
//	})
//
// Non-goals (v1): no DFA/JIT compilation layer, no []byte-oriented API —
// all matching is over strings (internally, rune sequences), matching the
// way the pattern language itself reasons about characters, not bytes.
package coregex

import (
	"github.com/coregx/coregex/ast"
	"github.com/coregx/coregex/compiler"
	"github.com/coregx/coregex/cursor"
	"github.com/coregx/coregex/engine"
	"github.com/coregx/coregex/matcher"
	"github.com/coregx/coregex/syntax"
)

// Options is an alias for syntax.Options, re-exported so callers never need
// to import the syntax package just to configure a Compile call.
type Options = syntax.Options

// DefaultOptions returns the zero-value configuration: case-sensitive,
// single-line, '.' excludes newlines.
func DefaultOptions() Options { return syntax.DefaultOptions() }

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines: all of its
// methods build a fresh cursor per call and never mutate shared state.
type Regex struct {
	pattern string
	root    *ast.Node
	re      *compiler.CompiledRegex
	eng     *engine.Engine
}

// Regexp is an alias for Regex, for callers migrating code that imported
// the standard library's regexp package under that name.
type Regexp = Regex

// Match is one successful match: the overall span and each capture group's
// span, all as rune offsets into the matched string. Group 0 is never
// populated here; callers that want the overall span use Start/End.
type Match struct {
	Start, End int
	Groups     map[int]cursor.Range
}

// Compile compiles a regular expression pattern with DefaultOptions.
//
// Returns a *syntax.CompileError if the pattern is invalid.
func Compile(pattern string) (*Regex, error) {
	return CompileOptions(pattern, DefaultOptions())
}

// CompileOptions compiles pattern with an explicit Options configuration.
func CompileOptions(pattern string, options Options) (*Regex, error) {
	root, err := syntax.Parse(pattern, options)
	if err != nil {
		return nil, err
	}

	compiled, err := compiler.Compile(root, options)
	if err != nil {
		return nil, err
	}

	return &Regex{
		pattern: pattern,
		root:    root,
		re:      compiled,
		eng:     engine.New(root, compiled),
	}, nil
}

// MustCompile compiles pattern with DefaultOptions and panics if it fails.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("coregex: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string { return r.pattern }

// NumSubexp returns the number of capturing groups in the pattern.
func (r *Regex) NumSubexp() int { return r.re.NumGroups }

// ForMatch is the core search primitive: it scans s for successive,
// non-overlapping matches and calls callback with each one in left-to-right
// order, stopping early if callback returns false. All offsets in the
// reported Match are rune offsets into s, not byte offsets; use
// FindStringIndex/FindAllStringIndex for byte offsets.
func (r *Regex) ForMatch(s string, callback func(Match) bool) error {
	input := []rune(s)
	return r.eng.ForMatch(input, 0, func(m matcher.Match) bool {
		return callback(Match{Start: m.Start, End: m.End, Groups: m.Groups})
	})
}

// MatchString reports whether s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	found := false
	_ = r.ForMatch(s, func(Match) bool {
		found = true
		return false
	})
	return found
}

// FindString returns the leftmost match in s, or "" if there is none. ok is
// false when there is no match, distinguishing that from an empty match.
func (r *Regex) FindString(s string) (match string, ok bool) {
	loc := r.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	return s[loc[0]:loc[1]], true
}

// FindStringIndex returns a two-element slice of byte offsets [start, end)
// of the leftmost match in s, or nil if there is no match.
func (r *Regex) FindStringIndex(s string) []int {
	runeToByte := runeByteOffsets(s)
	var loc []int
	_ = r.ForMatch(s, func(m Match) bool {
		loc = []int{runeToByte[m.Start], runeToByte[m.End]}
		return false
	})
	return loc
}

// FindAllString returns all successive, non-overlapping matches of the
// pattern in s. If n >= 0, at most n matches are returned.
func (r *Regex) FindAllString(s string, n int) []string {
	if n == 0 {
		return nil
	}
	var out []string
	_ = r.ForMatch(s, func(m Match) bool {
		runes := []rune(s)
		out = append(out, string(runes[m.Start:m.End]))
		return n < 0 || len(out) < n
	})
	return out
}

// FindAllStringIndex returns byte-offset [start, end) pairs for all
// successive, non-overlapping matches of the pattern in s. If n >= 0, at
// most n pairs are returned.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	if n == 0 {
		return nil
	}
	runeToByte := runeByteOffsets(s)
	var out [][]int
	_ = r.ForMatch(s, func(m Match) bool {
		out = append(out, []int{runeToByte[m.Start], runeToByte[m.End]})
		return n < 0 || len(out) < n
	})
	return out
}

// FindStringSubmatch returns the leftmost match and its capture groups, in
// the stdlib-regexp convention: result[0] is the overall match, result[i]
// is the text of the ith capture group (or "" if that group did not
// participate in the match). A nil result means no match.
func (r *Regex) FindStringSubmatch(s string) []string {
	runes := []rune(s)
	var out []string
	_ = r.ForMatch(s, func(m Match) bool {
		out = make([]string, r.NumSubexp()+1)
		out[0] = string(runes[m.Start:m.End])
		for idx, span := range m.Groups {
			if idx >= 1 && idx < len(out) {
				out[idx] = string(runes[span.Lo:span.Hi])
			}
		}
		return false
	})
	return out
}

// FindAllStringSubmatch returns all successive matches, each in the
// FindStringSubmatch convention. If n >= 0, at most n matches are returned.
func (r *Regex) FindAllStringSubmatch(s string, n int) [][]string {
	if n == 0 {
		return nil
	}
	runes := []rune(s)
	var out [][]string
	_ = r.ForMatch(s, func(m Match) bool {
		groups := make([]string, r.NumSubexp()+1)
		groups[0] = string(runes[m.Start:m.End])
		for idx, span := range m.Groups {
			if idx >= 1 && idx < len(groups) {
				groups[idx] = string(runes[span.Lo:span.Hi])
			}
		}
		out = append(out, groups)
		return n < 0 || len(out) < n
	})
	return out
}

// ReplaceAllString returns a copy of src with every match of the pattern
// replaced by repl. $1, $2, ... inside repl are expanded to the
// corresponding capture group's text; $0 is the overall match; $$ is a
// literal '$'.
func (r *Regex) ReplaceAllString(src, repl string) string {
	runes := []rune(src)
	var out []rune
	last := 0
	_ = r.ForMatch(src, func(m Match) bool {
		out = append(out, runes[last:m.Start]...)
		out = append(out, expand(repl, runes, m)...)
		last = m.End
		return true
	})
	out = append(out, runes[last:]...)
	return string(out)
}

// expand renders repl against the groups captured in m, substituting $N
// references; N==0 refers to the overall match.
func expand(repl string, src []rune, m Match) []rune {
	r := []rune(repl)
	var out []rune
	for i := 0; i < len(r); i++ {
		if r[i] != '$' || i+1 >= len(r) {
			out = append(out, r[i])
			continue
		}
		switch {
		case r[i+1] == '$':
			out = append(out, '$')
			i++
		case r[i+1] >= '0' && r[i+1] <= '9':
			n := int(r[i+1] - '0')
			if n == 0 {
				out = append(out, src[m.Start:m.End]...)
			} else if span, ok := m.Groups[n]; ok {
				out = append(out, src[span.Lo:span.Hi]...)
			}
			i++
		default:
			out = append(out, r[i])
		}
	}
	return out
}

// Split slices s around matches of the pattern, returning the substrings
// between them. n follows the strings.SplitN convention: n > 0 caps the
// number of substrings, n == 0 returns nil, n < 0 returns all substrings.
func (r *Regex) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	locs := r.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return []string{s}
	}

	var out []string
	last := 0
	for _, loc := range locs {
		if n > 0 && len(out) >= n-1 {
			break
		}
		out = append(out, s[last:loc[0]])
		last = loc[1]
	}
	out = append(out, s[last:])
	return out
}

// runeByteOffsets returns a table mapping each rune index in s (0..len in
// runes, inclusive) to its byte offset, so rune-indexed Match results can
// be translated back to the byte offsets stdlib-regexp-style Index methods
// return.
func runeByteOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))
	return offsets
}
