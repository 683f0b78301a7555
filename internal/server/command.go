package server

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/command"
	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

// registerCommands installs the executors for every server-handled command
// suffix onto s.commands.
func (s *Server) registerCommands() {
	s.commands.Register(command.SemanticRefactorSuffix, s.executeSemanticRefactor)
}

func (s *Server) handleExecuteCommand(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params protocol.ExecuteCommandParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	exec, ok := s.commands.Lookup(params.Command)
	if !ok {
		reply(nil, dispatcher.MethodNotFoundError(params.Command))
		return
	}

	result, err := exec(params.Arguments)
	if err != nil {
		reply(nil, dispatcher.InternalError(err.Error()))
		return
	}
	reply(result, nil)
}

// executeSemanticRefactor decodes args as a SemanticRefactorCommand, issues
// the refactor against the document's current snapshot, and returns the
// produced edit ranges. The native analyzer surface for this request
// carries only affected ranges, not replacement text, so the result is the
// ranges themselves rather than a workspace/applyEdit the server cannot
// faithfully construct.
func (s *Server) executeSemanticRefactor(args []interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, errors.New("semantic refactor: missing command argument")
	}
	dict, ok := args[0].(map[string]interface{})
	if !ok {
		return nil, errors.New("semantic refactor: argument is not a dictionary")
	}

	refactor, err := command.DecodeSemanticRefactor(core.Command{
		ID:        command.ID(command.SemanticRefactorSuffix),
		Arguments: []interface{}{dict},
	})
	if err != nil {
		return nil, errors.Wrap(err, "semantic refactor")
	}

	url := refactor.TextDocument.URI
	snap, ok := s.documents.LatestSnapshot(url)
	if !ok {
		return nil, errors.Errorf("semantic refactor: document not open: %s", url)
	}

	ctx := context.Background()
	compilerArgs := s.settings.compilerArgs(ctx, url, snap.Document.Language)

	offset, ok := snap.LineTable.ByteOffset(refactor.Line, refactor.Column)
	if !ok {
		return nil, errors.New("semantic refactor: position out of range")
	}

	ranges, err := s.bridge.SemanticRefactor(ctx, url, refactor.ActionString, offset, refactor.Length, compilerArgs)
	if err != nil {
		return nil, errors.Wrap(err, "semantic refactor")
	}

	out := make([]protocol.Range, 0, len(ranges))
	for _, pseudo := range ranges {
		r, ok := snap.LineTable.RangeFromByteOffsets(pseudo.Start.Character, pseudo.End.Character)
		if !ok {
			continue
		}
		wire, err := adapter.FromCoreRange(snap.LineTable, r)
		if err != nil {
			continue
		}
		out = append(out, wire)
	}
	return out, nil
}
