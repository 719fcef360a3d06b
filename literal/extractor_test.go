package literal_test

import (
	"testing"

	"github.com/coregx/coregex/literal"
	"github.com/coregx/coregex/syntax"
)

func TestExtractPrefixes_PlainLiteral(t *testing.T) {
	root, err := syntax.Parse("hello world", syntax.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := literal.New(literal.DefaultConfig())
	seq := e.ExtractPrefixes(root)
	if seq.Len() != 1 {
		t.Fatalf("expected 1 literal, got %d", seq.Len())
	}
	got := seq.Get(0)
	if string(got.Bytes) != "hello world" || !got.Complete {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractPrefixes_StopsAtQuantifier(t *testing.T) {
	root, err := syntax.Parse("abc\\d+def", syntax.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := literal.New(literal.DefaultConfig())
	seq := e.ExtractPrefixes(root)
	if seq.Len() != 1 || string(seq.Get(0).Bytes) != "abc" || seq.Get(0).Complete {
		t.Fatalf("got %+v", seq)
	}
}

func TestExtractSuffixes_PlainLiteral(t *testing.T) {
	root, err := syntax.Parse("\\d+abc", syntax.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := literal.New(literal.DefaultConfig())
	seq := e.ExtractSuffixes(root)
	if seq.Len() != 1 || string(seq.Get(0).Bytes) != "abc" {
		t.Fatalf("got %+v", seq)
	}
}

func TestExtractPrefixes_Alternation(t *testing.T) {
	root, err := syntax.Parse("cat|dog|bird", syntax.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := literal.New(literal.DefaultConfig())
	seq := e.ExtractPrefixes(root)
	if seq.Len() != 3 {
		t.Fatalf("expected 3 alternatives, got %d: %+v", seq.Len(), seq)
	}
}

func TestExtractPrefixes_SkipsStartAnchor(t *testing.T) {
	root, err := syntax.Parse("^prefix", syntax.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := literal.New(literal.DefaultConfig())
	seq := e.ExtractPrefixes(root)
	if seq.Len() != 1 || string(seq.Get(0).Bytes) != "prefix" {
		t.Fatalf("got %+v", seq)
	}
}

func TestExtractPrefixes_AnyCharacterYieldsNothing(t *testing.T) {
	root, err := syntax.Parse(".*anything", syntax.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := literal.New(literal.DefaultConfig())
	seq := e.ExtractPrefixes(root)
	if !seq.IsEmpty() {
		t.Fatalf("expected empty prefix set, got %+v", seq)
	}
}

func TestExtractInner_FindsRequiredMiddleLiteral(t *testing.T) {
	root, err := syntax.Parse(".*foo.*", syntax.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := literal.New(literal.DefaultConfig())
	seq := e.ExtractInner(root)
	if seq.IsEmpty() {
		t.Fatalf("expected a required inner literal")
	}
}

func TestExtractPrefixes_SmallCharSetExpands(t *testing.T) {
	root, err := syntax.Parse("[ab]x", syntax.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e := literal.New(literal.DefaultConfig())
	seq := e.ExtractPrefixes(root)
	if seq.Len() != 2 {
		t.Fatalf("expected 2 expanded literals, got %+v", seq)
	}
}
