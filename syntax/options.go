package syntax

// Options configures how a pattern is parsed and matched.
type Options struct {
	// CaseInsensitive folds ASCII/Unicode case when comparing literal
	// characters and backreferences; character classes fold ASCII letters
	// only.
	CaseInsensitive bool

	// Multiline makes '^'/'$' additionally bind at line boundaries (any
	// position adjacent to '\n'), not just the whole-string start/end.
	Multiline bool

	// DotMatchesLineSeparators makes '.' match '\n' as well.
	DotMatchesLineSeparators bool
}

// DefaultOptions returns the zero-value configuration: case-sensitive,
// single-line, '.' excludes newlines.
func DefaultOptions() Options {
	return Options{}
}
