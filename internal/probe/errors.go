package probe

import "fmt"

// SpawnError means the probe tool could not be started at all.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// MalformedLineError is returned when a line has a known shape but one of
// its numbers does not parse.
type MalformedLineError struct {
	Line  int // 1-based
	Text  string
	Token string
	Err   error
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: malformed token %q in %q: %v", e.Line, e.Token, e.Text, e.Err)
}

func (e *MalformedLineError) Unwrap() error { return e.Err }

// UnrecognizedLineError is returned for a line that matches no known shape.
type UnrecognizedLineError struct {
	Line int // 1-based
	Text string
}

func (e *UnrecognizedLineError) Error() string {
	return fmt.Sprintf("line %d: unrecognized output %q", e.Line, e.Text)
}
