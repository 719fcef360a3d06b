// Package combinator provides the transactional parser-combinator kernel
// the regex grammar is built from.
//
// A Parser[T] is a function over an *Input: it either consumes some prefix
// of the input and returns a value, or leaves the input untouched and
// reports "no match". A hard failure (via Required) is distinct from "no
// match": it aborts the whole parse instead of letting a surrounding oneOf
// try the next alternative.
package combinator

import "fmt"

// Input is the mutable cursor parsers read from. Every primitive and
// combinator in this package is transactional: on failure (no match or
// error) the input's position is restored to where it was on entry.
type Input struct {
	runes []rune
	pos   int
}

// NewInput creates an Input over pattern.
func NewInput(pattern string) *Input {
	return &Input{runes: []rune(pattern)}
}

// Pos returns the current 0-based rune offset.
func (in *Input) Pos() int { return in.pos }

// AtEnd reports whether the input is exhausted.
func (in *Input) AtEnd() bool { return in.pos >= len(in.runes) }

// SetPos rewinds or advances the input to an absolute rune offset. Used by
// grammar productions that need backtracking beyond a single combinator
// call (e.g. trying one production, then another, at the same start).
func (in *Input) SetPos(pos int) { in.pos = pos }

func (in *Input) peek() (rune, bool) {
	if in.AtEnd() {
		return 0, false
	}
	return in.runes[in.pos], true
}

func (in *Input) save() int      { return in.pos }
func (in *Input) restore(p int)  { in.pos = p }

// ParseError is a hard failure raised by Required; it aborts the parse
// instead of being swallowed by OneOf.
type ParseError struct {
	Message string
	Offset  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.Message, e.Offset)
}

// Parser attempts to read a T from in. It returns (value, true, nil) on
// success, (_, false, nil) on an ordinary non-match with the input
// rewound, or (_, false, err) on a hard failure with the input rewound.
type Parser[T any] func(in *Input) (T, bool, error)

// Char matches any single rune.
func Char(in *Input) (rune, bool, error) {
	start := in.save()
	r, ok := in.peek()
	if !ok {
		in.restore(start)
		return 0, false, nil
	}
	in.pos++
	return r, true, nil
}

// CharWhere matches a single rune satisfying pred.
func CharWhere(pred func(rune) bool) Parser[rune] {
	return func(in *Input) (rune, bool, error) {
		start := in.save()
		r, ok := in.peek()
		if !ok || !pred(r) {
			in.restore(start)
			return 0, false, nil
		}
		in.pos++
		return r, true, nil
	}
}

// CharExcluding matches any single rune not present in excluded.
func CharExcluding(excluded string) Parser[rune] {
	set := map[rune]bool{}
	for _, r := range excluded {
		set[r] = true
	}
	return CharWhere(func(r rune) bool { return !set[r] })
}

// Literal matches the exact rune sequence s.
func Literal(s string) Parser[string] {
	want := []rune(s)
	return func(in *Input) (string, bool, error) {
		start := in.save()
		for i, r := range want {
			if in.pos+i >= len(in.runes) || in.runes[in.pos+i] != r {
				in.restore(start)
				return "", false, nil
			}
		}
		in.pos += len(want)
		return s, true, nil
	}
}

// Digit matches a single ASCII decimal digit.
var Digit = CharWhere(func(r rune) bool { return r >= '0' && r <= '9' })

// Number matches one or more decimal digits and returns the parsed int.
func Number(in *Input) (int, bool, error) {
	start := in.save()
	n := 0
	any := false
	for {
		r, ok := in.peek()
		if !ok || r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		in.pos++
		any = true
	}
	if !any {
		in.restore(start)
		return 0, false, nil
	}
	return n, true, nil
}

// Zip2 sequences two parsers, requiring both to succeed.
func Zip2[A, B any](a Parser[A], b Parser[B]) Parser[struct {
	A A
	B B
}] {
	return func(in *Input) (struct {
		A A
		B B
	}, bool, error) {
		var zero struct {
			A A
			B B
		}
		start := in.save()
		va, ok, err := a(in)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			in.restore(start)
			return zero, false, nil
		}
		vb, ok, err := b(in)
		if err != nil {
			in.restore(start)
			return zero, false, err
		}
		if !ok {
			in.restore(start)
			return zero, false, nil
		}
		return struct {
			A A
			B B
		}{va, vb}, true, nil
	}
}

// OneOf tries each parser in order and returns the first that matches.
// A hard error (from Required) aborts immediately instead of being
// swallowed in favor of the next alternative.
func OneOf[T any](parsers ...Parser[T]) Parser[T] {
	return func(in *Input) (T, bool, error) {
		var zero T
		for _, p := range parsers {
			start := in.save()
			v, ok, err := p(in)
			if err != nil {
				return zero, false, err
			}
			if ok {
				return v, true, nil
			}
			in.restore(start)
		}
		return zero, false, nil
	}
}

// Map transforms a successful result. If f returns ok=false the parse is
// turned into a non-match with the input rewound (no input was consumed
// by the transform itself, since Map runs after p already succeeded — the
// rewind covers p's own consumption).
func Map[A, B any](p Parser[A], f func(A) (B, bool)) Parser[B] {
	return func(in *Input) (B, bool, error) {
		var zero B
		start := in.save()
		va, ok, err := p(in)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			return zero, false, nil
		}
		vb, ok := f(va)
		if !ok {
			in.restore(start)
			return zero, false, nil
		}
		return vb, true, nil
	}
}

// FlatMap chains a parser into a second parser built from its result.
func FlatMap[A, B any](p Parser[A], f func(A) Parser[B]) Parser[B] {
	return func(in *Input) (B, bool, error) {
		var zero B
		start := in.save()
		va, ok, err := p(in)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			return zero, false, nil
		}
		v, ok, err := f(va)(in)
		if err != nil {
			in.restore(start)
			return zero, false, err
		}
		if !ok {
			in.restore(start)
			return zero, false, nil
		}
		return v, true, nil
	}
}

// Optional turns a non-match into a zero-value success without consuming
// input; it never fails and never propagates an error as a non-match.
func Optional[T any](p Parser[T]) Parser[T] {
	return func(in *Input) (T, bool, error) {
		v, ok, err := p(in)
		if err != nil {
			var zero T
			return zero, false, err
		}
		if !ok {
			var zero T
			return zero, true, nil
		}
		return v, true, nil
	}
}

// ZeroOrMore greedily applies p until it stops matching, collecting results.
func ZeroOrMore[T any](p Parser[T]) Parser[[]T] {
	return func(in *Input) ([]T, bool, error) {
		var out []T
		for {
			start := in.save()
			v, ok, err := p(in)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				in.restore(start)
				break
			}
			out = append(out, v)
		}
		return out, true, nil
	}
}

// OneOrMore requires at least one match of p.
func OneOrMore[T any](p Parser[T]) Parser[[]T] {
	return func(in *Input) ([]T, bool, error) {
		first, ok, err := p(in)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		rest, _, err := ZeroOrMore(p)(in)
		if err != nil {
			return nil, false, err
		}
		return append([]T{first}, rest...), true, nil
	}
}

// Required promotes a non-match into a hard ParseError carrying message
// and the offset at which the failure was detected. Once raised, the
// error is not swallowed by an enclosing OneOf — it aborts the parse.
func Required[T any](p Parser[T], message string) Parser[T] {
	return func(in *Input) (T, bool, error) {
		v, ok, err := p(in)
		if err != nil {
			return v, false, err
		}
		if !ok {
			var zero T
			return zero, false, &ParseError{Message: message, Offset: in.Pos()}
		}
		return v, true, nil
	}
}

// Lazy defers construction of a parser, breaking recursive grammar
// definitions (e.g. Expression referring to Group referring to Expression).
func Lazy[T any](build func() Parser[T]) Parser[T] {
	var cached Parser[T]
	return func(in *Input) (T, bool, error) {
		if cached == nil {
			cached = build()
		}
		return cached(in)
	}
}
