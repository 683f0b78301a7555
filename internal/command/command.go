// Package command implements the server-side workspace/executeCommand
// layer: a registry of command types keyed by their reserved
// "swift.lsp."-prefixed identifier, following the tagged-variant shape the
// design notes call for (one arm per known command plus an implicit
// "unknown" arm via the registry's ok-return).
package command

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/swiftls-project/swiftls/internal/core"
)

// Suffix identifies a specific command type within the reserved namespace.
type Suffix string

const SemanticRefactorSuffix Suffix = "semantic.refactor.command"

// ErrNotThisCommand is returned by a Decode function when identifier or
// arguments don't match, distinct from a malformed-but-matching payload.
var ErrNotThisCommand = errors.New("not this command")

// ID returns the full reserved identifier for suffix.
func ID(suffix Suffix) string {
	return core.CommandPrefix + string(suffix)
}

// SemanticRefactorCommand is the canonical server-handled command: a
// refactor action chosen in the code-action layer, executed later when the
// client sends workspace/executeCommand for it.
type SemanticRefactorCommand struct {
	Title        string            `json:"title"`
	ActionString string            `json:"actionString"`
	Line         int               `json:"line"`
	Column       int               `json:"column"`
	Length       int               `json:"length"`
	TextDocument TextDocumentIdent `json:"textDocument"`
}

// TextDocumentIdent mirrors the {"uri": "..."} shape the client round-trips
// opaquely inside a command argument.
type TextDocumentIdent struct {
	URI string `json:"uri"`
}

// AsCommand serializes c as the single-dictionary-argument core.Command the
// code-action layer returns to the client.
func (c SemanticRefactorCommand) AsCommand() (core.Command, error) {
	arg, err := toArgument(c)
	if err != nil {
		return core.Command{}, errors.Wrap(err, "encode semantic refactor command")
	}
	return core.Command{
		Title:     c.Title,
		ID:        ID(SemanticRefactorSuffix),
		Arguments: []any{arg},
	}, nil
}

// DecodeSemanticRefactor attempts to decode cmd as a SemanticRefactorCommand.
// It returns ErrNotThisCommand when the identifier doesn't match or the
// first argument isn't a dictionary; any other decode failure (a matching
// identifier with a malformed dictionary) is returned as-is so callers can
// distinguish "not mine" from "mine, but corrupt".
func DecodeSemanticRefactor(cmd core.Command) (SemanticRefactorCommand, error) {
	var out SemanticRefactorCommand
	if cmd.ID != ID(SemanticRefactorSuffix) {
		return out, ErrNotThisCommand
	}
	if len(cmd.Arguments) == 0 {
		return out, ErrNotThisCommand
	}
	dict, ok := cmd.Arguments[0].(map[string]any)
	if !ok {
		return out, ErrNotThisCommand
	}
	if err := fromArgument(dict, &out); err != nil {
		return out, errors.Wrap(err, "decode semantic refactor command")
	}
	return out, nil
}

// toArgument and fromArgument round-trip a command payload through JSON:
// encoding/json already guarantees arbitrary nested null/array/map
// structures survive unchanged, which is exactly what the command
// round-trip law requires.
func toArgument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromArgument(dict map[string]any, out any) error {
	raw, err := json.Marshal(dict)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
