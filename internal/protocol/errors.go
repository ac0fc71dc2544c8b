package protocol

import (
	"fmt"
	"strings"
)

// ParseError reports a document that is not a single well-formed JSON value.
type ParseError struct {
	Document string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: malformed JSON: %v", e.Document, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports well-formed JSON with the wrong shape.
// Path locates the violation, e.g. "commands[2].params[0].type".
type SchemaError struct {
	Document string
	Path     string
	Message  string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid %s: %s", e.Document, e.Message)
	}
	return fmt.Sprintf("invalid %s at %s: %s", e.Document, e.Path, e.Message)
}

// NewSchemaError builds a SchemaError with a formatted message.
func NewSchemaError(document, path, format string, args ...any) *SchemaError {
	return &SchemaError{
		Document: document,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	}
}

// InvocationError reports an extension process that failed or printed nothing.
type InvocationError struct {
	Extension string
	ExitCode  int
	Stderr    string
	Err       error
}

func (e *InvocationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "extension %s failed", e.Extension)
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&b, "\n%s", stderr)
	}
	return b.String()
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// JoinPath appends segments to a dotted path. Integer segments render as
// indexes: JoinPath("commands", 2, "name") == "commands[2].name".
func JoinPath(base string, segments ...any) string {
	var b strings.Builder
	b.WriteString(base)
	for _, seg := range segments {
		switch s := seg.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", s)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, s)
		}
	}
	return b.String()
}
