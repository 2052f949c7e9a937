package literal

import "fmt"

// Reason classifies a reconstruction diagnostic.
type Reason int

// Reason constants.
const (
	ReasonTagMismatch  Reason = iota // end tag name differs from start tag name
	ReasonUnclassified               // match populated neither comment nor tag
)

func (r Reason) String() string {
	switch r {
	case ReasonTagMismatch:
		return "end tag does not match start tag"
	case ReasonUnclassified:
		return "unclassified match"
	default:
		return "unknown"
	}
}

// Diagnostic is the base interface for reconstruction diagnostics. They are
// never returned as failures; they travel inside Error fragments and render
// inline.
type Diagnostic interface {
	error
	Position() Position
	Reason() Reason
}

// baseDiagnostic provides common diagnostic functionality.
type baseDiagnostic struct {
	pos    Position
	reason Reason
	msg    string
}

func (e *baseDiagnostic) Position() Position { return e.pos }
func (e *baseDiagnostic) Reason() Reason     { return e.reason }
func (e *baseDiagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}

// MismatchError reports a simple tag whose end tag names a different element.
type MismatchError struct {
	baseDiagnostic
	StartTag string
	EndTag   string
}

// NewMismatchError creates a new tag mismatch diagnostic.
func NewMismatchError(pos Position, start, end string) *MismatchError {
	return &MismatchError{
		baseDiagnostic: baseDiagnostic{
			pos:    pos,
			reason: ReasonTagMismatch,
			msg:    fmt.Sprintf("%s: <%s> closed by </%s>", ReasonTagMismatch, start, end),
		},
		StartTag: start,
		EndTag:   end,
	}
}

// UnclassifiedError reports a match the pattern could not attribute to
// either construct.
type UnclassifiedError struct {
	baseDiagnostic
	Text string
}

// NewUnclassifiedError creates a new unclassified match diagnostic.
func NewUnclassifiedError(pos Position, text string) *UnclassifiedError {
	return &UnclassifiedError{
		baseDiagnostic: baseDiagnostic{
			pos:    pos,
			reason: ReasonUnclassified,
			msg:    fmt.Sprintf("%s: %q", ReasonUnclassified, text),
		},
		Text: text,
	}
}
