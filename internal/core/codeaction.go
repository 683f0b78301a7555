package core

import "strings"

// CommandPrefix is the reserved identifier prefix for server-handled
// commands (see internal/command). Any workspace/executeCommand whose
// identifier carries this prefix is decoded and run locally rather than
// forwarded anywhere else.
const CommandPrefix = "swift.lsp."

// Command is a reference to either a client- or server-handled command.
// Arguments round-trip through JSON unchanged: a bare any tree already
// matches the {null, bool, number, string, array, object} shape required of
// command arguments, so no custom sum type is needed here.
type Command struct {
	Title     string
	ID        string
	Arguments []any
}

// IsServerCommand reports whether c is handled locally rather than by the
// client.
func (c Command) IsServerCommand() bool {
	return strings.HasPrefix(c.ID, CommandPrefix)
}

// CodeActionKind classifies a CodeAction for client-side filtering.
type CodeActionKind string

const (
	CodeActionKindEmpty           CodeActionKind = ""
	CodeActionKindQuickFix        CodeActionKind = "quickfix"
	CodeActionKindRefactor        CodeActionKind = "refactor"
	CodeActionKindRefactorExtract CodeActionKind = "refactor.extract"
	CodeActionKindRefactorInline  CodeActionKind = "refactor.inline"
	CodeActionKindRefactorRewrite CodeActionKind = "refactor.rewrite"
	CodeActionKindSource          CodeActionKind = "source"
)

// CodeAction is a single offered action: a title, an optional kind, an
// optional command to execute, and optional edits (not modeled here since
// the native analyzer's refactor results are expressed as commands, per
// spec section 4.6's SemanticRefactorCommand).
type CodeAction struct {
	Title   string
	Kind    *CodeActionKind
	Command *Command
}

// MatchesOnly reports whether a's kind is acceptable under a client's
// context.only filter: unset kinds always pass, and an empty filter accepts
// everything.
func (a CodeAction) MatchesOnly(only []CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	if a.Kind == nil {
		return true
	}
	for _, k := range only {
		if k == *a.Kind {
			return true
		}
	}
	return false
}
