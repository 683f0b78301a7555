package adapter

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

// FromCoreCommand converts a server-side command reference to its wire
// shape. Arguments are passed through as-is: both sides already agree that
// command arguments are bare JSON values.
func FromCoreCommand(cmd core.Command) protocol.Command {
	out := protocol.Command{
		Title:   cmd.Title,
		Command: cmd.ID,
	}
	if len(cmd.Arguments) > 0 {
		args := make([]interface{}, len(cmd.Arguments))
		for i, a := range cmd.Arguments {
			args[i] = a
		}
		out.Arguments = args
	}
	return out
}

// FromCoreCodeAction converts a single action, downgrading to a bare
// protocol.Command when useLegacyCommands is true (the client declared no
// textDocument.codeAction.codeActionLiteralSupport and only understands the
// pre-3.8 Command[] response shape).
func FromCoreCodeAction(action core.CodeAction, useLegacyCommands bool) (protocol.CodeAction, *protocol.Command) {
	var cmd *protocol.Command
	if action.Command != nil {
		c := FromCoreCommand(*action.Command)
		cmd = &c
	}

	if useLegacyCommands {
		return protocol.CodeAction{}, cmd
	}

	out := protocol.CodeAction{
		Title:   action.Title,
		Command: cmd,
	}
	if action.Kind != nil {
		kind := protocol.CodeActionKind(*action.Kind)
		out.Kind = &kind
	}
	return out, nil
}

// FromCoreCodeActions filters actions by the client's context.only kinds and
// its advertised valueSet (the set of CodeActionKind strings the client
// declared understanding in textDocument.codeAction.codeActionKind.valueSet),
// then converts the survivors. useLegacyCommands collapses the literal
// CodeAction[] response down to a bare Command[] for clients that predate
// CodeAction literals.
func FromCoreCodeActions(actions []core.CodeAction, only []core.CodeActionKind, valueSet map[core.CodeActionKind]bool, useLegacyCommands bool) ([]protocol.CodeAction, []protocol.Command) {
	var literals []protocol.CodeAction
	var commands []protocol.Command

	for _, action := range actions {
		if !action.MatchesOnly(only) {
			continue
		}
		if !useLegacyCommands && action.Kind != nil && !valueSet[*action.Kind] {
			continue
		}

		literal, cmd := FromCoreCodeAction(action, useLegacyCommands)
		if useLegacyCommands {
			if cmd != nil {
				commands = append(commands, *cmd)
			}
			continue
		}
		literals = append(literals, literal)
	}
	return literals, commands
}
