package adapter

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

var symbolKindTable = map[core.SymbolKind]protocol.SymbolKind{
	core.SymbolKindFile:          protocol.SymbolKindFile,
	core.SymbolKindModule:        protocol.SymbolKindModule,
	core.SymbolKindNamespace:     protocol.SymbolKindNamespace,
	core.SymbolKindPackage:       protocol.SymbolKindPackage,
	core.SymbolKindClass:         protocol.SymbolKindClass,
	core.SymbolKindMethod:        protocol.SymbolKindMethod,
	core.SymbolKindProperty:      protocol.SymbolKindProperty,
	core.SymbolKindField:         protocol.SymbolKindField,
	core.SymbolKindConstructor:   protocol.SymbolKindConstructor,
	core.SymbolKindEnum:          protocol.SymbolKindEnum,
	core.SymbolKindInterface:     protocol.SymbolKindInterface,
	core.SymbolKindFunction:      protocol.SymbolKindFunction,
	core.SymbolKindVariable:      protocol.SymbolKindVariable,
	core.SymbolKindConstant:      protocol.SymbolKindConstant,
	core.SymbolKindStruct:        protocol.SymbolKindStruct,
	core.SymbolKindTypeParameter: protocol.SymbolKindTypeParameter,
}

// defaultSymbolKind is used when a native declaration kind has no entry in
// symbolKindTable: LSP requires a SymbolKind, there is no "unknown" value.
const defaultSymbolKind = protocol.SymbolKindVariable

// FromCoreDocumentSymbol converts a symbol tree node and its children.
//
// Per the documented decision on unmapped parents: a child whose own parent
// node carried an unrecognized native declaration kind was already folded
// into that parent's own parent by the bridge/server symbol walk before
// this function runs, so FromCoreDocumentSymbol only ever sees symbols that
// are meant to be emitted at their given nesting level.
func FromCoreDocumentSymbol(lt *core.LineTable, sym core.DocumentSymbol) (protocol.DocumentSymbol, error) {
	r, err := FromCoreRange(lt, sym.Range)
	if err != nil {
		return protocol.DocumentSymbol{}, err
	}
	sel, err := FromCoreRange(lt, sym.SelectionRange)
	if err != nil {
		return protocol.DocumentSymbol{}, err
	}

	kind := defaultSymbolKind
	if k, ok := symbolKindTable[sym.Kind]; ok {
		kind = k
	}

	out := protocol.DocumentSymbol{
		Name:           sym.Name,
		Kind:           kind,
		Range:          r,
		SelectionRange: sel,
	}
	if len(sym.Children) > 0 {
		children := make([]protocol.DocumentSymbol, 0, len(sym.Children))
		for _, child := range sym.Children {
			pc, err := FromCoreDocumentSymbol(lt, child)
			if err != nil {
				continue
			}
			children = append(children, pc)
		}
		out.Children = children
	}
	return out, nil
}

// SymbolDetails is the wire shape for the symbol-info extension request,
// grounded on sourcekit-lsp's own textDocument/symbolInfo response: the
// single symbol found at the cursor, or an empty list.
type SymbolDetails struct {
	Name string              `json:"name"`
	Kind protocol.SymbolKind `json:"kind"`
	USR  string              `json:"usr,omitempty"`
}

// FromCoreCursorSymbol converts the single symbol found at a cursor
// position.
func FromCoreCursorSymbol(sym core.CursorSymbol) SymbolDetails {
	kind := defaultSymbolKind
	if k, ok := symbolKindTable[sym.Kind]; ok {
		kind = k
	}
	return SymbolDetails{Name: sym.Name, Kind: kind, USR: sym.USR}
}

// FromCoreDocumentSymbols converts a full outline, dropping any top-level
// node whose range no longer resolves against lt.
func FromCoreDocumentSymbols(lt *core.LineTable, symbols []core.DocumentSymbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, sym := range symbols {
		ps, err := FromCoreDocumentSymbol(lt, sym)
		if err != nil {
			continue
		}
		out = append(out, ps)
	}
	return out
}
