package diag

import (
	"fmt"
	"go/token"
)

// Note provides auxiliary context attached to a diagnostic.
type Note struct {
	Pos token.Position
	Msg string
}

// Diagnostic captures a single reported issue.
type Diagnostic struct {
	ID       ID
	Severity Severity
	Category string
	Message  string
	Pos      token.Position
	Notes    []Note
}

// New constructs a Diagnostic, filling Severity/Category from the closed
// catalog so callers cannot accidentally mismatch severity and id.
func New(id ID, pos token.Position, msg string) Diagnostic {
	d := Diagnostic{ID: id, Pos: pos, Message: msg}
	if desc, ok := Lookup(id); ok {
		d.Severity = desc.Severity
		d.Category = desc.Category
	} else {
		d.Severity = SevError
	}
	return d
}

// WithNote appends a note and returns the diagnostic for chaining.
func (d Diagnostic) WithNote(pos token.Position, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Msg: msg})
	return d
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s %s: %s", d.Pos, d.Severity, d.ID, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.ID, d.Message)
}
