// Package adapter converts between the UTF-8 byte-offset types in
// internal/core and the UTF-16 code-unit types the LSP wire format
// (github.com/tliron/glsp/protocol_3_16) requires. Every conversion goes
// through a document's core.LineTable; nothing here assumes ASCII.
package adapter

import (
	"github.com/pkg/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

// ErrPositionOutOfRange is returned when a protocol position does not
// resolve against the line table (stale client position, past end of
// document, or landing mid-surrogate-pair).
var ErrPositionOutOfRange = errors.New("position out of range")

// ToCorePosition converts a protocol.Position (UTF-16) to a core.Position
// (UTF-8 byte offset) using lt.
func ToCorePosition(lt *core.LineTable, pos protocol.Position) (core.Position, error) {
	byteCol, ok := lt.UTF8Offset(int(pos.Line), int(pos.Character))
	if !ok {
		return core.Position{}, errors.Wrapf(ErrPositionOutOfRange, "%d:%d", pos.Line, pos.Character)
	}
	start, _, _ := lineStartOf(lt, int(pos.Line))
	return core.Position{Line: int(pos.Line), Character: byteCol - start}, nil
}

func lineStartOf(lt *core.LineTable, line int) (int, int, bool) {
	// ByteOffset with column 0 always returns the line's start offset when
	// the line exists.
	start, ok := lt.ByteOffset(line, 0)
	return start, 0, ok
}

// FromCorePosition converts a core.Position (UTF-8) to a protocol.Position
// (UTF-16) using lt.
func FromCorePosition(lt *core.LineTable, pos core.Position) (protocol.Position, error) {
	col, ok := lt.UTF16Column(pos.Line, pos.Character)
	if !ok {
		return protocol.Position{}, errors.Wrapf(ErrPositionOutOfRange, "%d:%d", pos.Line, pos.Character)
	}
	return protocol.Position{Line: protocol.UInteger(pos.Line), Character: protocol.UInteger(col)}, nil
}

// ToCoreRange converts a protocol.Range to a core.Range.
func ToCoreRange(lt *core.LineTable, r protocol.Range) (core.Range, error) {
	start, err := ToCorePosition(lt, r.Start)
	if err != nil {
		return core.Range{}, err
	}
	end, err := ToCorePosition(lt, r.End)
	if err != nil {
		return core.Range{}, err
	}
	return core.Range{Start: start, End: end}, nil
}

// FromCoreRange converts a core.Range to a protocol.Range.
func FromCoreRange(lt *core.LineTable, r core.Range) (protocol.Range, error) {
	start, err := FromCorePosition(lt, r.Start)
	if err != nil {
		return protocol.Range{}, err
	}
	end, err := FromCorePosition(lt, r.End)
	if err != nil {
		return protocol.Range{}, err
	}
	return protocol.Range{Start: start, End: end}, nil
}

// FromCoreLocation converts a core.Location to a protocol.Location.
func FromCoreLocation(lt *core.LineTable, loc core.Location) (protocol.Location, error) {
	r, err := FromCoreRange(lt, loc.Range)
	if err != nil {
		return protocol.Location{}, err
	}
	return protocol.Location{URI: protocol.DocumentUri(loc.URL), Range: r}, nil
}
