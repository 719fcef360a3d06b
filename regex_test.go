package coregex

import (
	"reflect"
	"testing"
)

func TestCompile_RejectsEmptyPattern(t *testing.T) {
	if _, err := Compile(""); err == nil {
		t.Fatal("expected an error compiling the empty pattern")
	}
}

func TestCompile_RejectsBackreferenceToUnknownGroup(t *testing.T) {
	if _, err := Compile(`(a)\2`); err == nil {
		t.Fatal("expected a compile error for a dangling backreference")
	}
}

func TestForMatch_CaptureGroups(t *testing.T) {
	re := MustCompile(`a(b+)c`)
	var got []string
	var captures []string
	re.ForMatch("aabbbcdabc", func(m Match) bool {
		got = append(got, string([]rune("aabbbcdabc")[m.Start:m.End]))
		if span, ok := m.Groups[1]; ok {
			captures = append(captures, string([]rune("aabbbcdabc")[span.Lo:span.Hi]))
		} else {
			captures = append(captures, "")
		}
		return true
	})
	if !reflect.DeepEqual(got, []string{"abbbc", "abc"}) {
		t.Fatalf("got matches %v", got)
	}
	if !reflect.DeepEqual(captures, []string{"bbb", "b"}) {
		t.Fatalf("got captures %v", captures)
	}
}

func TestFindAllString_Alternation(t *testing.T) {
	re := MustCompile(`(a|b)*`)
	got := re.FindAllString("abba", -1)
	want := []string{"abba", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFindAllString_RangeQuantifierGreedy(t *testing.T) {
	re := MustCompile(`\d{2,4}`)
	got := re.FindAllString("1 12 123 1234 12345", -1)
	want := []string{"12", "123", "1234", "1234"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFindAllString_MultilineAnchor(t *testing.T) {
	opts := DefaultOptions()
	opts.Multiline = true
	re, err := CompileOptions(`^foo`, opts)
	if err != nil {
		t.Fatal(err)
	}
	got := re.FindAllString("foo\nbar\nfoobar", -1)
	want := []string{"foo", "foo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFindStringSubmatch_Backreference(t *testing.T) {
	re := MustCompile(`(cat|dog)\1`)
	got := re.FindAllStringSubmatch("catcat dogdog catdog", -1)
	want := [][]string{{"catcat", "cat"}, {"dogdog", "dog"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMatchString_DotExcludesNewlineByDefault(t *testing.T) {
	re := MustCompile(`a.*b`)
	if re.MatchString("a\nxb") {
		t.Fatal("expected no match: '.' should not cross a newline by default")
	}
}

func TestMatchString_DotMatchesLineSeparatorsOption(t *testing.T) {
	opts := DefaultOptions()
	opts.DotMatchesLineSeparators = true
	re, err := CompileOptions(`a.*b`, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("a\nxb") {
		t.Fatal("expected a match with DotMatchesLineSeparators set")
	}
}

func TestReplaceAllString_ExpandsGroups(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)`)
	got := re.ReplaceAllString("user@example", "$2 at $1")
	if got != "example at user" {
		t.Fatalf("got %q", got)
	}
}

func TestSplit_OnLiteral(t *testing.T) {
	re := MustCompile(`,`)
	got := re.Split("a,b,c", -1)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCaseInsensitiveOption(t *testing.T) {
	opts := DefaultOptions()
	opts.CaseInsensitive = true
	re, err := CompileOptions(`hello`, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("Hello HELLO") {
		t.Fatal("expected a case-insensitive match")
	}
}

func TestNumSubexp(t *testing.T) {
	re := MustCompile(`(a)(b)(?:c)(d)`)
	if re.NumSubexp() != 3 {
		t.Fatalf("got %d, want 3 (non-capturing group must not count)", re.NumSubexp())
	}
}
