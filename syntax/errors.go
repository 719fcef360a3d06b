package syntax

import "fmt"

// CompileError is the single error kind produced by parsing and compiling a
// pattern. Offset is a 0-based rune offset into the pattern where the fault
// was detected.
type CompileError struct {
	Message string
	Offset  int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("regex compile error: %s (at offset %d)", e.Message, e.Offset)
}

func newCompileError(offset int, format string, args ...any) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...), Offset: offset}
}
